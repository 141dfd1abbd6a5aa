package settlement

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"agency/internal/model"
)

// Cycle selects how records are grouped for a settlement report.
type Cycle string

const (
	CycleDaily   Cycle = "Daily"
	CycleWeekly  Cycle = "Weekly"
	CycleMonthly Cycle = "Monthly"
)

const dateLayout = "2006-01-02"

// CycleSpec pairs a cycle with its key: an exact date for Daily, a
// YYYY-Www week for Weekly, a YYYY-MM month for Monthly.
type CycleSpec struct {
	Cycle Cycle  `json:"cycle"`
	Key   string `json:"key"`
}

// window is a closed date range in YYYY-MM-DD form. Record dates are
// stored in the same form, so containment is plain string comparison.
type window struct {
	start, end string
}

func (w window) contains(date string) bool {
	return date >= w.start && date <= w.end
}

// WeekRange resolves a YYYY-Www key to its Monday-to-Sunday range. The
// anchor is Jan 1 plus (week-1)*7 days; if that lands on Monday through
// Thursday the week starts on the preceding Monday, otherwise on the next.
func WeekRange(key string) (start, end string, err error) {
	yearStr, weekStr, ok := strings.Cut(key, "-W")
	if !ok {
		return "", "", invalidInput("week", "expected YYYY-Www, got %q", key)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", "", invalidInput("week", "bad year in %q", key)
	}
	week, err := strconv.Atoi(weekStr)
	if err != nil || week < 1 || week > 53 {
		return "", "", invalidInput("week", "bad week number in %q", key)
	}

	anchor := time.Date(year, time.January, 1+(week-1)*7, 0, 0, 0, 0, time.UTC)
	monday := anchor
	if dow := int(anchor.Weekday()); dow <= 4 {
		monday = anchor.AddDate(0, 0, 1-dow)
	} else {
		monday = anchor.AddDate(0, 0, 8-dow)
	}
	return monday.Format(dateLayout), monday.AddDate(0, 0, 6).Format(dateLayout), nil
}

func (s CycleSpec) window() (window, error) {
	switch s.Cycle {
	case CycleDaily:
		// time.Parse accepts unpadded fields, but the string-ordered
		// windows require the canonical zero-padded form.
		if d, err := time.Parse(dateLayout, s.Key); err != nil || d.Format(dateLayout) != s.Key {
			return window{}, invalidInput("date", "expected YYYY-MM-DD, got %q", s.Key)
		}
		return window{start: s.Key, end: s.Key}, nil
	case CycleWeekly:
		start, end, err := WeekRange(s.Key)
		if err != nil {
			return window{}, err
		}
		return window{start: start, end: end}, nil
	case CycleMonthly:
		if m, err := time.Parse("2006-01", s.Key); err != nil || m.Format("2006-01") != s.Key {
			return window{}, invalidInput("month", "expected YYYY-MM, got %q", s.Key)
		}
		// Prefix match: "-01" through "-31" sorts inside the bounds.
		return window{start: s.Key + "-01", end: s.Key + "-31"}, nil
	default:
		return window{}, invalidInput("cycle", "unknown cycle %q", s.Cycle)
	}
}

// String renders the spec for report headers and filenames.
func (s CycleSpec) String() string {
	return fmt.Sprintf("%s %s", s.Cycle, s.Key)
}

// FilterLogs returns the records whose date falls inside the cycle window.
func FilterLogs(logs []model.WorkLog, spec CycleSpec) ([]model.WorkLog, error) {
	w, err := spec.window()
	if err != nil {
		return nil, err
	}
	out := make([]model.WorkLog, 0, len(logs))
	for _, l := range logs {
		if w.contains(l.Date) {
			out = append(out, l)
		}
	}
	return out, nil
}
