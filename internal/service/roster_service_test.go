package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Andrei050191/La-serviciu/config"
	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/internal/repository"
	pkgerrors "github.com/Andrei050191/La-serviciu/pkg/errors"
)

type testEnv struct {
	repo    *repository.Repository
	members *mockMemberRepo
	records *mockDayRecordRepo
	duties  *mockDutyDayRepo
	elig    *mockEligibilityRepo
	logs    *mockStatusLogRepo

	roster RosterService
	status StatusService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		members: newMockMemberRepo(),
		records: newMockDayRecordRepo(),
		duties:  newMockDutyDayRepo(),
		elig:    newMockEligibilityRepo(),
		logs:    newMockStatusLogRepo(),
	}
	env.repo = &repository.Repository{
		Member:      env.members,
		DayRecord:   env.records,
		DutyDay:     env.duties,
		Eligibility: env.elig,
		StatusLog:   env.logs,
	}

	cfg := &config.Config{}
	cfg.Roster.HorizonDays = 3

	logger := zap.NewNop()
	notifier := NewNopNotifier()
	env.roster = NewRosterService(env.repo, cfg, notifier, logger)
	env.status = NewStatusService(env.repo, cfg, notifier, logger)
	return env
}

func (e *testEnv) addMember(t *testing.T, lastName string) string {
	t.Helper()
	m := &model.Member{
		Rank:      "Sd.",
		FirstName: "Ion",
		LastName:  lastName,
		CodeHash:  "x",
		Role:      model.RoleMember,
	}
	if err := e.members.Create(context.Background(), m); err != nil {
		t.Fatalf("creating member: %v", err)
	}
	return m.MemberID
}

func today() time.Time {
	return model.NormalizeDay(time.Now())
}

const operator = "op-1"

// ── assign ──

func TestAssignSetsDutyAndAfterDuty(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Popescu")
	day := today()

	resp, err := env.roster.Assign(ctx, day, 0, model.Assigned(a), operator)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if resp.Slots[0].MemberID == nil || *resp.Slots[0].MemberID != a {
		t.Fatalf("slot 0 occupant = %+v, want %s", resp.Slots[0], a)
	}

	if got := env.records.status(a, day); got != model.StatusOnDuty {
		t.Errorf("status on duty day = %q, want on_duty", got)
	}
	if got := env.records.status(a, day.AddDate(0, 0, 1)); got != model.StatusAfterDuty {
		t.Errorf("status day+1 = %q, want after_duty", got)
	}
	if env.records.meal(a, day) || env.records.meal(a, day.AddDate(0, 0, 1)) {
		t.Error("meal reservation must stay off across an assignment")
	}

	for _, l := range env.logs.logs {
		if l.Source != model.SourceRosterSync {
			t.Errorf("audit source = %q, want roster_sync", l.Source)
		}
	}
}

func TestAssignIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Popescu")
	day := today()

	for i := 0; i < 2; i++ {
		if _, err := env.roster.Assign(ctx, day, 0, model.Assigned(a), operator); err != nil {
			t.Fatalf("Assign #%d: %v", i+1, err)
		}
	}

	if got := env.records.status(a, day); got != model.StatusOnDuty {
		t.Errorf("status = %q, want on_duty", got)
	}
	if n := env.logs.countFor(a, day); n != 1 {
		t.Errorf("audit entries for duty day = %d, want 1 (no duplicate side effects)", n)
	}
	if n := env.logs.countFor(a, day.AddDate(0, 0, 1)); n != 1 {
		t.Errorf("audit entries for day+1 = %d, want 1", n)
	}
}

func TestAssignRejectsDoubleBooking(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Popescu")
	day := today()

	if _, err := env.roster.Assign(ctx, day, 0, model.Assigned(a), operator); err != nil {
		t.Fatalf("first Assign: %v", err)
	}

	_, err := env.roster.Assign(ctx, day, 2, model.Assigned(a), operator)
	if !errors.Is(err, ErrDuplicateAssignment) {
		t.Fatalf("err = %v, want ErrDuplicateAssignment", err)
	}
	if occ := env.duties.occupant(day, 2); occ.IsMember() {
		t.Error("rejected assignment must not modify the roster")
	}
}

func TestAssignRejectsConsecutiveDuty(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Popescu")
	day := today()

	if _, err := env.roster.Assign(ctx, day, 0, model.Assigned(a), operator); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	for _, offset := range []int{-1, 1} {
		adjacent := day.AddDate(0, 0, offset)
		_, err := env.roster.Assign(ctx, adjacent, 1, model.Assigned(a), operator)
		if !errors.Is(err, ErrConsecutiveDuty) {
			t.Errorf("offset %+d: err = %v, want ErrConsecutiveDuty", offset, err)
		}
		if occ := env.duties.occupant(adjacent, 1); occ.IsMember() {
			t.Errorf("offset %+d: rejected assignment must not modify the roster", offset)
		}
	}
}

func TestAssignRejectsIneligiblePerson(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Albu")
	b := env.addMember(t, "Barbu")
	c := env.addMember(t, "Costea")

	// slot 1 is "Sergent de serviciu PCT"
	role := model.RoleName(1)
	if err := env.elig.ReplaceRole(ctx, role, []string{a, b}, operator); err != nil {
		t.Fatalf("seeding eligibility: %v", err)
	}

	day := today()
	_, err := env.roster.Assign(ctx, day, 1, model.Assigned(c), operator)
	if !errors.Is(err, ErrIneligiblePerson) {
		t.Fatalf("err = %v, want ErrIneligiblePerson", err)
	}
	if occ := env.duties.occupant(day, 1); occ.IsMember() {
		t.Error("rejected assignment must not modify the roster")
	}
	if got := env.records.status(c, day); got != model.StatusUnspecified {
		t.Errorf("rejected assignment wrote status %q", got)
	}

	// allow-listed member passes
	if _, err := env.roster.Assign(ctx, day, 1, model.Assigned(a), operator); err != nil {
		t.Fatalf("eligible Assign: %v", err)
	}
}

func TestAssignReleaseRevertsStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Popescu")
	day := today()

	if _, err := env.roster.Assign(ctx, day, 0, model.Assigned(a), operator); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := env.roster.Assign(ctx, day, 0, model.External(), operator); err != nil {
		t.Fatalf("release Assign: %v", err)
	}

	if got := env.records.status(a, day); got != model.StatusPresent {
		t.Errorf("released status = %q, want present", got)
	}
	if env.records.meal(a, day) {
		t.Error("release must clear the meal reservation")
	}
	if occ := env.duties.occupant(day, 0); occ.IsMember() {
		t.Error("slot must be external after release")
	}
	// day+1 after-duty is left for manual correction, not auto-reverted
	if got := env.records.status(a, day.AddDate(0, 0, 1)); got != model.StatusAfterDuty {
		t.Errorf("day+1 status = %q, want after_duty", got)
	}
}

func TestAssignReassignReleasesPreviousOccupant(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Albu")
	b := env.addMember(t, "Barbu")
	day := today()

	if _, err := env.roster.Assign(ctx, day, 0, model.Assigned(a), operator); err != nil {
		t.Fatalf("Assign a: %v", err)
	}
	if _, err := env.roster.Assign(ctx, day, 0, model.Assigned(b), operator); err != nil {
		t.Fatalf("Assign b: %v", err)
	}

	if got := env.records.status(a, day); got != model.StatusPresent {
		t.Errorf("previous occupant status = %q, want present", got)
	}
	if got := env.records.status(b, day); got != model.StatusOnDuty {
		t.Errorf("new occupant status = %q, want on_duty", got)
	}
}

func TestAssignInterventionDrivesNoStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Popescu")
	day := today()
	env.records.put(a, day, model.StatusPresent, true)

	if _, err := env.roster.Assign(ctx, day, model.SlotIntervention1, model.Assigned(a), operator); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	if got := env.records.status(a, day); got != model.StatusPresent {
		t.Errorf("status = %q, intervention assignment must not touch it", got)
	}
	if !env.records.meal(a, day) {
		t.Error("meal reservation must survive an intervention assignment")
	}
	if n := env.logs.countFor(a, day); n != 0 {
		t.Errorf("audit entries = %d, want 0", n)
	}
}

func TestAssignSecondInterventionDisabledOnSingleMode(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Popescu")
	day := today()

	if _, err := env.roster.SetDayMode(ctx, day, model.ModeSingleIntervention, operator); err != nil {
		t.Fatalf("SetDayMode: %v", err)
	}

	_, err := env.roster.Assign(ctx, day, model.SlotIntervention2, model.Assigned(a), operator)
	if !errors.Is(err, ErrSlotDisabled) {
		t.Fatalf("err = %v, want ErrSlotDisabled", err)
	}
}

func TestAssignUnknownMember(t *testing.T) {
	env := newTestEnv()
	_, err := env.roster.Assign(context.Background(), today(), 0, model.Assigned("no-such-id"), operator)
	if !errors.Is(err, ErrUnknownMember) {
		t.Fatalf("err = %v, want ErrUnknownMember", err)
	}
}

func TestAssignInvalidSlot(t *testing.T) {
	env := newTestEnv()
	for _, idx := range []int{-1, model.SlotCount} {
		if _, err := env.roster.Assign(context.Background(), today(), idx, model.External(), operator); !errors.Is(err, ErrInvalidSlot) {
			t.Errorf("slot %d: err = %v, want ErrInvalidSlot", idx, err)
		}
	}
}

func TestAssignRetriesOnceOnStaleWrite(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Popescu")
	day := today()

	env.duties.failSlotUpdates = 1
	if _, err := env.roster.Assign(ctx, day, 0, model.Assigned(a), operator); err != nil {
		t.Fatalf("Assign with one stale write: %v", err)
	}
	if occ := env.duties.occupant(day, 0); !occ.IsMember() || occ.MemberID != a {
		t.Errorf("occupant = %+v, want %s after retry", occ, a)
	}
}

func TestAssignSurfacesSecondStaleWrite(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Popescu")
	day := today()

	env.duties.failSlotUpdates = 2
	_, err := env.roster.Assign(ctx, day, 0, model.Assigned(a), operator)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("err = %v, want ErrOptimisticLock after exhausted retry", err)
	}
}

// ── day mode ──

func TestSetDayModeClearsSecondIntervention(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	x := env.addMember(t, "Popescu")
	day := today()
	env.records.put(x, day, model.StatusPresent, false)

	if _, err := env.roster.Assign(ctx, day, model.SlotIntervention2, model.Assigned(x), operator); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	resp, err := env.roster.SetDayMode(ctx, day, model.ModeSingleIntervention, operator)
	if err != nil {
		t.Fatalf("SetDayMode: %v", err)
	}
	if resp.Mode != model.ModeSingleIntervention {
		t.Errorf("mode = %q, want single intervention", resp.Mode)
	}
	if occ := env.duties.occupant(day, model.SlotIntervention2); occ.IsMember() {
		t.Error("second intervention slot must be cleared on single mode")
	}
	// intervention assignments never drove status, so nothing to revert
	if got := env.records.status(x, day); got != model.StatusPresent {
		t.Errorf("status = %q, want present untouched", got)
	}
}

func TestSetDayModeIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	day := today()

	for i := 0; i < 2; i++ {
		if _, err := env.roster.SetDayMode(ctx, day, model.ModeSingleIntervention, operator); err != nil {
			t.Fatalf("SetDayMode #%d: %v", i+1, err)
		}
	}
}

func TestSetDayModeInvalid(t *testing.T) {
	env := newTestEnv()
	if _, err := env.roster.SetDayMode(context.Background(), today(), "3", operator); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("err = %v, want ErrInvalidMode", err)
	}
}

// ── reads ──

func TestGetDayDefaultsWhenUnwritten(t *testing.T) {
	env := newTestEnv()
	resp, err := env.roster.GetDay(context.Background(), today())
	if err != nil {
		t.Fatalf("GetDay: %v", err)
	}
	if resp.Mode != model.ModeDoubleIntervention {
		t.Errorf("mode = %q, want double intervention default", resp.Mode)
	}
	if len(resp.Slots) != model.SlotCount {
		t.Fatalf("slots = %d, want %d", len(resp.Slots), model.SlotCount)
	}
	for _, slot := range resp.Slots {
		if slot.Label != model.ExternalLabel {
			t.Errorf("slot %d label = %q, want %q", slot.Index, slot.Label, model.ExternalLabel)
		}
	}
}

func TestGetRangeFillsMissingDays(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.addMember(t, "Popescu")
	day := today()

	if _, err := env.roster.Assign(ctx, day, 0, model.Assigned(a), operator); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	days, err := env.roster.GetRange(ctx, day, day.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("days = %d, want 3", len(days))
	}
	if days[0].Slots[0].MemberID == nil {
		t.Error("stored day lost its assignment")
	}
	if days[1].Slots[0].MemberID != nil || days[2].Slots[0].MemberID != nil {
		t.Error("synthesized days must be all external")
	}
}

func TestGetRangeTooWide(t *testing.T) {
	env := newTestEnv()
	_, err := env.roster.GetRange(context.Background(), today(), today().AddDate(0, 0, 200))
	if !errors.Is(err, ErrRangeTooWide) {
		t.Fatalf("err = %v, want ErrRangeTooWide", err)
	}
}
