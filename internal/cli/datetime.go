package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"associate-os/internal/model"
)

var (
	reDateOnly     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reRelativeDays = regexp.MustCompile(`^\+(\d+)d$`)
)

// parseDate parses:
// - YYYY-MM-DD
// - today / tomorrow
// - +Nd (N days from today)
// - RFC3339 (reduced to its local calendar date)
//
// and returns it as YYYY-MM-DD.
func parseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}
	if reDateOnly.MatchString(s) {
		if _, err := time.Parse(model.DateLayout, s); err != nil {
			return "", fmt.Errorf("invalid date %q", s)
		}
		return s, nil
	}
	switch strings.ToLower(s) {
	case "today":
		return now.Format(model.DateLayout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(model.DateLayout), nil
	}
	if m := reRelativeDays.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", fmt.Errorf("invalid date %q", s)
		}
		return now.AddDate(0, 0, n).Format(model.DateLayout), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.In(now.Location()).Format(model.DateLayout), nil
	}
	return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD, today, tomorrow, +Nd, or RFC3339)", s)
}
