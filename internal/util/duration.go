package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseInterval accepts a bare integer number of seconds ("60") or a Go
// duration string ("90s", "2m").
func ParseInterval(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if seconds, err := strconv.Atoi(input); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("invalid interval format: %q\n\nValid formats:\n"+
			"• Seconds: 60, 300\n"+
			"• Duration: 90s, 2m, 1m30s", input)
	}
	return d, nil
}
