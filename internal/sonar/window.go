package sonar

import (
	"fmt"
	"time"

	"github.com/clintrovert/sonar-notify/pkg/types"
)

// TimestampLayout is the format of startedAt and executedAt in task responses
const TimestampLayout = "2006-01-02T15:04:05-0700"

// WindowLookback widens the window before the task start so that issues
// raised while the scanner was still running are included
const WindowLookback = 10 * time.Minute

// ComputeWindow derives the issue search window from the task timestamps.
// The parsed offset is dropped, not converted: the wall clock reading is used
// as if it were UTC.
func ComputeWindow(startedAt, executedAt string) (types.TimeWindow, error) {
	start, err := parseWallClock(startedAt)
	if err != nil {
		return types.TimeWindow{}, fmt.Errorf("failed to parse startedAt: %w", err)
	}

	end, err := parseWallClock(executedAt)
	if err != nil {
		return types.TimeWindow{}, fmt.Errorf("failed to parse executedAt: %w", err)
	}

	return types.TimeWindow{
		After:  start.Add(-WindowLookback),
		Before: end,
	}, nil
}

// parseWallClock accepts exactly TimestampLayout. time.Parse alone would also
// take fractional seconds, which the server format does not allow.
func parseWallClock(value string) (time.Time, error) {
	if len(value) != len(TimestampLayout) {
		return time.Time{}, fmt.Errorf("timestamp %q does not match %s", value, TimestampLayout)
	}
	t, err := time.Parse(TimestampLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}
