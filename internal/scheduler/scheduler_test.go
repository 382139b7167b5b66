package scheduler

import (
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func TestDefaultCronSpecsParse(t *testing.T) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	specs := map[string]string{
		"collect": "0 6 * * *",
		"daily":   "0 9 * * *",
		"weekly":  "0 10 * * 1",
	}
	for name, spec := range specs {
		if _, err := parser.Parse(spec); err != nil {
			t.Errorf("%s spec %q does not parse: %v", name, spec, err)
		}
	}
}

func TestWeeklySpecFiresOnMonday(t *testing.T) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse("0 10 * * 1")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// A Saturday; the next run must land on Monday 10:00.
	from := time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local)
	next := sched.Next(from)
	if next.Weekday() != time.Monday {
		t.Errorf("expected Monday, got %s", next.Weekday())
	}
	if next.Hour() != 10 || next.Minute() != 0 {
		t.Errorf("expected 10:00, got %02d:%02d", next.Hour(), next.Minute())
	}
}
