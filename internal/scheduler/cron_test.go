package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMatchesCronPartWildcard(t *testing.T) {
	require.True(t, matchesCronPart("*", 5))
	require.True(t, matchesCronPart("*", 0))
}

func TestMatchesCronPartExact(t *testing.T) {
	require.True(t, matchesCronPart("5", 5))
	require.False(t, matchesCronPart("5", 6))
}

func TestMatchesCronPartStep(t *testing.T) {
	require.True(t, matchesCronPart("*/5", 0))
	require.True(t, matchesCronPart("*/5", 5))
	require.True(t, matchesCronPart("*/5", 10))
	require.False(t, matchesCronPart("*/5", 3))
}

func TestMatchesCronPartRange(t *testing.T) {
	require.True(t, matchesCronPart("1-5", 3))
	require.False(t, matchesCronPart("1-5", 6))
}

func TestMatchesCronPartList(t *testing.T) {
	require.True(t, matchesCronPart("1,3,5", 3))
	require.False(t, matchesCronPart("1,3,5", 4))
}

func TestValidateCron(t *testing.T) {
	require.NoError(t, validateCron("* * * * *"))
	require.NoError(t, validateCron("0 * * * *"))
	require.NoError(t, validateCron("*/5 * * * *"))
	require.Error(t, validateCron("bad"))
	require.Error(t, validateCron("* * * *"))
}

func TestShouldTrigger(t *testing.T) {
	at := time.Date(2026, time.July, 31, 14, 30, 0, 0, time.UTC) // Friday
	require.True(t, shouldTrigger("* * * * *", at))
	require.True(t, shouldTrigger("30 14 * * *", at))
	require.False(t, shouldTrigger("0 14 * * *", at))
	require.True(t, shouldTrigger("*/15 * * * *", at))
	require.True(t, shouldTrigger("* * * * 5", at)) // Friday == ISO weekday 5
	require.False(t, shouldTrigger("* * * * 1", at))
}
