package settlement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency/internal/model"
)

func TestWeekRange(t *testing.T) {
	cases := []struct {
		key        string
		start, end string
	}{
		// Jan 1 2024 is a Monday, so week 1 starts on it.
		{"2024-W01", "2024-01-01", "2024-01-07"},
		{"2024-W02", "2024-01-08", "2024-01-14"},
		// Jan 1 2026 is a Thursday; the anchor rolls back to Monday.
		{"2026-W01", "2025-12-29", "2026-01-04"},
		// Jan 1 2027 is a Friday; the anchor rolls forward.
		{"2027-W01", "2027-01-04", "2027-01-10"},
		// Jan 1 2023 is a Sunday; the anchor rolls to the next day.
		{"2023-W01", "2023-01-02", "2023-01-08"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			start, end, err := WeekRange(tc.key)
			require.NoError(t, err)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}

func TestWeekRangeRejectsMalformedKeys(t *testing.T) {
	for _, key := range []string{"", "2024", "2024-13", "2024-W00", "2024-W54", "abcd-W01", "2024-Wxx"} {
		_, _, err := WeekRange(key)
		assert.Error(t, err, "key %q", key)
	}
}

func logOn(date string) model.WorkLog {
	return model.WorkLog{ID: uuid.New(), Date: date}
}

func TestFilterLogsDaily(t *testing.T) {
	logs := []model.WorkLog{logOn("2026-03-01"), logOn("2026-03-02"), logOn("2026-03-02")}

	got, err := FilterLogs(logs, CycleSpec{Cycle: CycleDaily, Key: "2026-03-02"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, l := range got {
		assert.Equal(t, "2026-03-02", l.Date)
	}
}

func TestFilterLogsWeekly(t *testing.T) {
	logs := []model.WorkLog{
		logOn("2025-12-28"), // Sunday before the window
		logOn("2025-12-29"), // Monday, in
		logOn("2026-01-04"), // Sunday, in
		logOn("2026-01-05"), // Monday after
	}

	got, err := FilterLogs(logs, CycleSpec{Cycle: CycleWeekly, Key: "2026-W01"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-12-29", got[0].Date)
	assert.Equal(t, "2026-01-04", got[1].Date)
}

func TestFilterLogsMonthly(t *testing.T) {
	logs := []model.WorkLog{
		logOn("2026-01-31"),
		logOn("2026-02-01"),
		logOn("2026-02-28"),
		logOn("2026-03-01"),
	}

	got, err := FilterLogs(logs, CycleSpec{Cycle: CycleMonthly, Key: "2026-02"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2026-02-01", got[0].Date)
	assert.Equal(t, "2026-02-28", got[1].Date)
}

func TestFilterLogsRejectsBadSpecs(t *testing.T) {
	logs := []model.WorkLog{logOn("2026-02-01")}
	bad := []CycleSpec{
		{Cycle: CycleDaily, Key: "02/01/2026"},
		{Cycle: CycleWeekly, Key: "2026-05"},
		{Cycle: CycleMonthly, Key: "2026-2"},
		{Cycle: "Quarterly", Key: "2026-Q1"},
	}
	for _, spec := range bad {
		_, err := FilterLogs(logs, spec)
		assert.Error(t, err, "spec %v", spec)
	}
}
