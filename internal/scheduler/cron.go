package scheduler

import (
	"strconv"
	"strings"
	"time"
)

// validateCron checks that a cron expression has the 5 whitespace-separated
// fields (minute hour day month weekday) it needs; it does not otherwise
// validate the contents of each field.
func validateCron(cron string) error {
	parts := strings.Fields(cron)
	if len(parts) != 5 {
		return errCronFieldCount(len(parts))
	}
	return nil
}

// shouldTrigger reports whether cron matches the given instant, per-field.
func shouldTrigger(cron string, t time.Time) bool {
	parts := strings.Fields(cron)
	if len(parts) != 5 {
		return false
	}

	minute := uint32(t.Minute())
	hour := uint32(t.Hour())
	day := uint32(t.Day())
	month := uint32(t.Month())
	weekday := uint32(t.Weekday())
	if weekday == 0 {
		weekday = 7 // ISO weekday: Monday=1 .. Sunday=7
	}

	return matchesCronPart(parts[0], minute) &&
		matchesCronPart(parts[1], hour) &&
		matchesCronPart(parts[2], day) &&
		matchesCronPart(parts[3], month) &&
		matchesCronPart(parts[4], weekday)
}

// matchesCronPart evaluates one cron field ("*", "*/N", "A-B", "A,B,C", or
// a bare number) against value.
func matchesCronPart(part string, value uint32) bool {
	if part == "*" {
		return true
	}

	if step, ok := strings.CutPrefix(part, "*/"); ok {
		if stepVal, err := strconv.ParseUint(step, 10, 32); err == nil && stepVal > 0 {
			return value%uint32(stepVal) == 0
		}
	}

	if strings.Contains(part, "-") {
		bounds := strings.SplitN(part, "-", 2)
		if len(bounds) == 2 {
			start, errStart := strconv.ParseUint(bounds[0], 10, 32)
			end, errEnd := strconv.ParseUint(bounds[1], 10, 32)
			if errStart == nil && errEnd == nil {
				return value >= uint32(start) && value <= uint32(end)
			}
		}
	}

	if strings.Contains(part, ",") {
		for _, p := range strings.Split(part, ",") {
			if n, err := strconv.ParseUint(p, 10, 32); err == nil && uint32(n) == value {
				return true
			}
		}
		return false
	}

	n, err := strconv.ParseUint(part, 10, 32)
	return err == nil && uint32(n) == value
}

type cronFieldCountError struct{ got int }

func (e cronFieldCountError) Error() string {
	return "invalid cron expression: expected 5 fields, got " + strconv.Itoa(e.got)
}

func errCronFieldCount(got int) error { return cronFieldCountError{got: got} }
