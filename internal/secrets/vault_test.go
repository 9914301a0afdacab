package secrets

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	v := New("", "test-password")
	v.Set("API_KEY", "sk-12345", nil)

	value, ok := v.Get("API_KEY")
	require.True(t, ok)
	require.Equal(t, "sk-12345", value)
}

func TestGetMissingKey(t *testing.T) {
	v := New("", "")
	_, ok := v.Get("NOPE")
	require.False(t, ok)
}

func TestSubstitute(t *testing.T) {
	v := New("", "")
	v.Set("TOKEN", "abc123", nil)

	result := v.Substitute("Bearer ${secrets.TOKEN}")
	require.Equal(t, "Bearer abc123", result)
}

func TestSubstituteLeavesUnknownPlaceholderUntouched(t *testing.T) {
	v := New("", "")
	result := v.Substitute("value: ${secrets.MISSING}")
	require.Equal(t, "value: ${secrets.MISSING}", result)
}

func TestList(t *testing.T) {
	v := New("", "")
	v.Set("KEY1", "value1", nil)
	v.Set("KEY2", "value2", nil)

	require.ElementsMatch(t, []string{"KEY1", "KEY2"}, v.List())
}

func TestDelete(t *testing.T) {
	v := New("", "")
	v.Set("TEMP", "value", nil)

	require.True(t, v.Delete("TEMP"))
	require.False(t, v.Exists("TEMP"))
	require.False(t, v.Delete("TEMP"))
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.json")

	v1 := New(path, "pw")
	v1.Set("PERSISTED", "value", nil)

	v2 := New(path, "pw")
	value, ok := v2.Get("PERSISTED")
	require.True(t, ok)
	require.Equal(t, "value", value)
}

func TestDifferentPasswordsDeriveDifferentKeys(t *testing.T) {
	v1 := New("", "password-one")
	v1.Set("K", "secret-value", nil)

	raw, ok := v1.secrets["K"]
	require.True(t, ok)

	v2 := New("", "password-two")
	decrypted := v2.decrypt(raw.Value)
	require.NotEqual(t, "secret-value", decrypted)
}
