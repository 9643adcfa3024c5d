package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Andrei050191/La-serviciu/internal/model"
)

func TestRosterWorkbook(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Popescu")
	day := today()

	if _, err := env.roster.Assign(ctx, day, 0, model.Assigned(a), operator); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	svc := NewExportService(env.repo, zap.NewNop())
	f, err := svc.RosterWorkbook(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("RosterWorkbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Servicii", "Prezență"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("missing sheet %q", sheet)
		}
	}

	got, err := f.GetCellValue("Servicii", "B2")
	if err != nil {
		t.Fatalf("reading cell: %v", err)
	}
	if !strings.Contains(got, "POPESCU") {
		t.Errorf("B2 = %q, want the occupant's identity", got)
	}

	got, err = f.GetCellValue("Servicii", "B3")
	if err != nil {
		t.Fatalf("reading cell: %v", err)
	}
	if got != model.ExternalLabel {
		t.Errorf("B3 = %q, want %q for an unassigned day", got, model.ExternalLabel)
	}
}

func TestRosterWorkbookRangeTooWide(t *testing.T) {
	env := newTestEnv()
	svc := NewExportService(env.repo, zap.NewNop())
	if _, err := svc.RosterWorkbook(context.Background(), today(), today().AddDate(0, 0, 100)); err == nil {
		t.Fatal("expected range error")
	}
}

func TestPersonalCalendar(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Popescu")
	day := today()

	if _, err := env.roster.Assign(ctx, day, 2, model.Assigned(a), operator); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	svc := NewExportService(env.repo, zap.NewNop())
	feed, err := svc.PersonalCalendar(ctx, a, day, day.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("PersonalCalendar: %v", err)
	}

	if !strings.Contains(feed, "BEGIN:VCALENDAR") {
		t.Error("feed is not an iCalendar document")
	}
	if !strings.Contains(feed, "BEGIN:VEVENT") {
		t.Error("feed has no event for the assignment")
	}
	if !strings.Contains(feed, "Serviciu: "+model.RoleName(2)) {
		t.Errorf("feed missing the role summary, got:\n%s", feed)
	}
}

func TestPersonalCalendarEmptyWindow(t *testing.T) {
	env := newTestEnv()
	a := env.addMember(t, "Popescu")

	svc := NewExportService(env.repo, zap.NewNop())
	feed, err := svc.PersonalCalendar(context.Background(), a, today(), today().AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("PersonalCalendar: %v", err)
	}
	if strings.Contains(feed, "BEGIN:VEVENT") {
		t.Error("empty window must produce no events")
	}
}
