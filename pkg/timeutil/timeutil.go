package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTime formats seconds as H:MM:SS (e.g. 0:01:30, 1:11:22).
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	mins := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
}

// FormatClock formats seconds as M:SS, the scrubber readout format.
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	mins := int(math.Floor(seconds / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// FormatPrecise formats seconds as M:SS.mmm for trim points and split times.
func FormatPrecise(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	mins := int(seconds) / 60
	rest := seconds - float64(mins*60)
	return fmt.Sprintf("%d:%06.3f", mins, rest)
}

// ParseTimeToSeconds parses a time string in H:MM:SS, MM:SS, or raw seconds
// format. The last component may carry a fraction (1:02.5).
func ParseTimeToSeconds(timeStr string) (float64, error) {
	timeStr = strings.TrimSpace(timeStr)
	parts := strings.Split(timeStr, ":")
	if len(parts) > 3 || timeStr == "" {
		return 0, fmt.Errorf("expected H:MM:SS, MM:SS, or seconds, got '%s'", timeStr)
	}

	var total float64
	for i, p := range parts {
		last := i == len(parts)-1
		var v float64
		var err error
		if last {
			v, err = strconv.ParseFloat(p, 64)
		} else {
			var n int
			n, err = strconv.Atoi(p)
			v = float64(n)
		}
		if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("expected H:MM:SS, MM:SS, or seconds, got '%s'", timeStr)
		}
		total = total*60 + v
	}
	return total, nil
}
