package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/Andrei050191/La-serviciu/internal/model"
)

func TestDaySummaryCounts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	day := today()

	a := env.addMember(t, "Albu")
	b := env.addMember(t, "Barbu")
	c := env.addMember(t, "Costea")
	env.addMember(t, "Dinu") // no record: unspecified

	env.records.put(a, day, model.StatusPresent, true)
	env.records.put(b, day, model.StatusOnDuty, false)
	env.records.put(c, day, model.StatusPresent, false)

	svc := NewSummaryService(env.repo, nil, zap.NewNop())
	resp, err := svc.DaySummary(ctx, day)
	if err != nil {
		t.Fatalf("DaySummary: %v", err)
	}

	if resp.Total != 4 {
		t.Errorf("total = %d, want 4", resp.Total)
	}
	if got := resp.Counts[string(model.StatusPresent)]; got != 2 {
		t.Errorf("present count = %d, want 2", got)
	}
	if got := resp.Counts[string(model.StatusOnDuty)]; got != 1 {
		t.Errorf("on_duty count = %d, want 1", got)
	}
	if resp.Unspecified != 1 {
		t.Errorf("unspecified = %d, want 1", resp.Unspecified)
	}
	if resp.MealHeadcount != 1 {
		t.Errorf("meal headcount = %d, want 1", resp.MealHeadcount)
	}
	if resp.Day != model.DayKey(day) {
		t.Errorf("day = %q, want %q", resp.Day, model.DayKey(day))
	}

	// every status appears in the map even at zero
	for _, st := range model.AllStatuses {
		if _, ok := resp.Counts[string(st)]; !ok {
			t.Errorf("counts missing status %s", st)
		}
	}
}

func TestDaySummaryEmptyRoster(t *testing.T) {
	env := newTestEnv()
	svc := NewSummaryService(env.repo, nil, zap.NewNop())

	resp, err := svc.DaySummary(context.Background(), today())
	if err != nil {
		t.Fatalf("DaySummary: %v", err)
	}
	if resp.Total != 0 || resp.Unspecified != 0 || resp.MealHeadcount != 0 {
		t.Errorf("empty roster summary = %+v, want all zeros", resp)
	}
}
