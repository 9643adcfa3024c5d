package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/internal/repository"
	pkgerrors "github.com/Andrei050191/La-serviciu/pkg/errors"
)

// In-memory repositories backing the service tests. Writes go through the
// same optimistic-lock version check as the real implementations, and the
// fail counters let a test inject a stale-write conflict on demand.

// ── members ──

type mockMemberRepo struct {
	members map[string]*model.Member
}

func newMockMemberRepo() *mockMemberRepo {
	return &mockMemberRepo{members: make(map[string]*model.Member)}
}

func (m *mockMemberRepo) Create(_ context.Context, member *model.Member) error {
	if member.MemberID == "" {
		member.MemberID = uuid.New().String()
	}
	if member.Version == 0 {
		member.Version = 1
	}
	cp := *member
	m.members[member.MemberID] = &cp
	return nil
}

func (m *mockMemberRepo) BatchCreate(ctx context.Context, members []model.Member) error {
	for i := range members {
		if err := m.Create(ctx, &members[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockMemberRepo) GetByID(_ context.Context, id string) (*model.Member, error) {
	member, ok := m.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *member
	return &cp, nil
}

func (m *mockMemberRepo) List(_ context.Context) ([]model.Member, error) {
	out := make([]model.Member, 0, len(m.members))
	for _, member := range m.members {
		out = append(out, *member)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].LastName < out[j].LastName
	})
	return out, nil
}

func (m *mockMemberRepo) Update(_ context.Context, member *model.Member) error {
	stored, ok := m.members[member.MemberID]
	if !ok || stored.Version != member.Version {
		return pkgerrors.ErrOptimisticLock
	}
	cp := *member
	cp.Version++
	m.members[member.MemberID] = &cp
	member.Version = cp.Version
	return nil
}

func (m *mockMemberRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.members)), nil
}

// ── day records ──

type mockDayRecordRepo struct {
	recs map[string]*model.MemberDayRecord // memberID|dayKey
	// failUpdates forces the next n Update calls to report a stale write.
	failUpdates int
}

func newMockDayRecordRepo() *mockDayRecordRepo {
	return &mockDayRecordRepo{recs: make(map[string]*model.MemberDayRecord)}
}

func recKey(memberID string, day time.Time) string {
	return memberID + "|" + model.DayKey(day)
}

func (m *mockDayRecordRepo) Get(_ context.Context, memberID string, day time.Time) (*model.MemberDayRecord, error) {
	rec, ok := m.recs[recKey(memberID, day)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockDayRecordRepo) GetForUpdate(ctx context.Context, memberID string, day time.Time) (*model.MemberDayRecord, error) {
	return m.Get(ctx, memberID, day)
}

func (m *mockDayRecordRepo) ListByDay(_ context.Context, day time.Time) ([]model.MemberDayRecord, error) {
	var out []model.MemberDayRecord
	for _, rec := range m.recs {
		if model.SameDay(rec.Day, day) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *mockDayRecordRepo) ListRange(_ context.Context, from, to time.Time) ([]model.MemberDayRecord, error) {
	from, to = model.NormalizeDay(from), model.NormalizeDay(to)
	var out []model.MemberDayRecord
	for _, rec := range m.recs {
		if !rec.Day.Before(from) && !rec.Day.After(to) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *mockDayRecordRepo) ListByMemberRange(ctx context.Context, memberID string, from, to time.Time) ([]model.MemberDayRecord, error) {
	all, err := m.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var out []model.MemberDayRecord
	for _, rec := range all {
		if rec.MemberID == memberID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockDayRecordRepo) Create(_ context.Context, rec *model.MemberDayRecord) error {
	rec.Day = model.NormalizeDay(rec.Day)
	if rec.RecordID == "" {
		rec.RecordID = uuid.New().String()
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	key := recKey(rec.MemberID, rec.Day)
	if _, exists := m.recs[key]; exists {
		return fmt.Errorf("duplicate day record %s", key)
	}
	cp := *rec
	m.recs[key] = &cp
	return nil
}

func (m *mockDayRecordRepo) Update(_ context.Context, rec *model.MemberDayRecord) error {
	if m.failUpdates > 0 {
		m.failUpdates--
		return pkgerrors.ErrOptimisticLock
	}
	key := recKey(rec.MemberID, rec.Day)
	stored, ok := m.recs[key]
	if !ok || stored.Version != rec.Version {
		return pkgerrors.ErrOptimisticLock
	}
	cp := *rec
	cp.Version++
	m.recs[key] = &cp
	rec.Version = cp.Version
	return nil
}

// status returns the stored status for assertions, unspecified when absent.
func (m *mockDayRecordRepo) status(memberID string, day time.Time) model.StatusKind {
	if rec, ok := m.recs[recKey(memberID, day)]; ok {
		return rec.Status
	}
	return model.StatusUnspecified
}

func (m *mockDayRecordRepo) meal(memberID string, day time.Time) bool {
	if rec, ok := m.recs[recKey(memberID, day)]; ok {
		return rec.MealReserved
	}
	return false
}

func (m *mockDayRecordRepo) put(memberID string, day time.Time, status model.StatusKind, meal bool) {
	rec := &model.MemberDayRecord{
		RecordID:     uuid.New().String(),
		MemberID:     memberID,
		Day:          model.NormalizeDay(day),
		Status:       status,
		MealReserved: meal,
	}
	rec.Version = 1
	m.recs[recKey(memberID, day)] = rec
}

// ── duty days ──

type mockDutyDayRepo struct {
	days map[string]*model.DutyDay
	// failSlotUpdates forces the next n UpdateSlot calls to report a stale
	// write.
	failSlotUpdates int
}

func newMockDutyDayRepo() *mockDutyDayRepo {
	return &mockDutyDayRepo{days: make(map[string]*model.DutyDay)}
}

func copyDutyDay(dd *model.DutyDay) *model.DutyDay {
	cp := *dd
	cp.Slots = make([]model.DutySlot, len(dd.Slots))
	copy(cp.Slots, dd.Slots)
	return &cp
}

func (m *mockDutyDayRepo) GetByDay(_ context.Context, day time.Time) (*model.DutyDay, error) {
	dd, ok := m.days[model.DayKey(day)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyDutyDay(dd), nil
}

func (m *mockDutyDayRepo) GetByDayForUpdate(ctx context.Context, day time.Time) (*model.DutyDay, error) {
	return m.GetByDay(ctx, day)
}

func (m *mockDutyDayRepo) Create(_ context.Context, dd *model.DutyDay) error {
	dd.Day = model.NormalizeDay(dd.Day)
	key := model.DayKey(dd.Day)
	if _, exists := m.days[key]; exists {
		return fmt.Errorf("duplicate duty day %s", key)
	}
	if dd.DutyDayID == "" {
		dd.DutyDayID = uuid.New().String()
	}
	if dd.Version == 0 {
		dd.Version = 1
	}
	for i := range dd.Slots {
		if dd.Slots[i].DutySlotID == "" {
			dd.Slots[i].DutySlotID = uuid.New().String()
		}
		dd.Slots[i].DutyDayID = dd.DutyDayID
		if dd.Slots[i].Version == 0 {
			dd.Slots[i].Version = 1
		}
	}
	m.days[key] = copyDutyDay(dd)
	return nil
}

func (m *mockDutyDayRepo) UpdateDay(_ context.Context, dd *model.DutyDay) error {
	stored, ok := m.days[model.DayKey(dd.Day)]
	if !ok || stored.Version != dd.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Mode = dd.Mode
	stored.Version++
	dd.Version = stored.Version
	return nil
}

func (m *mockDutyDayRepo) UpdateSlot(_ context.Context, slot *model.DutySlot) error {
	if m.failSlotUpdates > 0 {
		m.failSlotUpdates--
		return pkgerrors.ErrOptimisticLock
	}
	for _, dd := range m.days {
		for i := range dd.Slots {
			if dd.Slots[i].DutySlotID != slot.DutySlotID {
				continue
			}
			if dd.Slots[i].Version != slot.Version {
				return pkgerrors.ErrOptimisticLock
			}
			dd.Slots[i].OccupantKind = slot.OccupantKind
			dd.Slots[i].MemberID = slot.MemberID
			dd.Slots[i].Version++
			slot.Version = dd.Slots[i].Version
			return nil
		}
	}
	return pkgerrors.ErrOptimisticLock
}

func (m *mockDutyDayRepo) ListRange(_ context.Context, from, to time.Time) ([]model.DutyDay, error) {
	from, to = model.NormalizeDay(from), model.NormalizeDay(to)
	var out []model.DutyDay
	for _, dd := range m.days {
		if !dd.Day.Before(from) && !dd.Day.After(to) {
			out = append(out, *copyDutyDay(dd))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (m *mockDutyDayRepo) ListMemberDuties(_ context.Context, memberID string, from, to time.Time) ([]repository.MemberDuty, error) {
	from, to = model.NormalizeDay(from), model.NormalizeDay(to)
	var out []repository.MemberDuty
	for _, dd := range m.days {
		if dd.Day.Before(from) || dd.Day.After(to) {
			continue
		}
		for i := range dd.Slots {
			if o := dd.Slots[i].Occupant(); o.IsMember() && o.MemberID == memberID {
				out = append(out, repository.MemberDuty{Day: dd.Day, SlotIndex: dd.Slots[i].SlotIndex})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

// occupant returns the stored occupant for assertions.
func (m *mockDutyDayRepo) occupant(day time.Time, slotIndex int) model.Occupant {
	dd, ok := m.days[model.DayKey(day)]
	if !ok {
		return model.External()
	}
	if slot := dd.Slot(slotIndex); slot != nil {
		return slot.Occupant()
	}
	return model.External()
}

// ── eligibility ──

type mockEligibilityRepo struct {
	rules []model.EligibilityRule
}

func newMockEligibilityRepo() *mockEligibilityRepo {
	return &mockEligibilityRepo{}
}

func (m *mockEligibilityRepo) ListAll(_ context.Context) ([]model.EligibilityRule, error) {
	return append([]model.EligibilityRule(nil), m.rules...), nil
}

func (m *mockEligibilityRepo) ListByRole(_ context.Context, role string) ([]model.EligibilityRule, error) {
	var out []model.EligibilityRule
	for _, r := range m.rules {
		if r.Role == role {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockEligibilityRepo) ReplaceRole(_ context.Context, role string, memberIDs []string, _ string) error {
	kept := m.rules[:0]
	for _, r := range m.rules {
		if r.Role != role {
			kept = append(kept, r)
		}
	}
	m.rules = kept
	for _, id := range memberIDs {
		m.rules = append(m.rules, model.EligibilityRule{
			RuleID:   uuid.New().String(),
			Role:     role,
			MemberID: id,
		})
	}
	return nil
}

// ── status logs ──

type mockStatusLogRepo struct {
	logs []model.StatusChangeLog
}

func newMockStatusLogRepo() *mockStatusLogRepo {
	return &mockStatusLogRepo{}
}

func (m *mockStatusLogRepo) Create(_ context.Context, log *model.StatusChangeLog) error {
	if log.LogID == "" {
		log.LogID = uuid.New().String()
	}
	log.CreatedAt = time.Now()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockStatusLogRepo) ListByMember(_ context.Context, memberID string, offset, limit int) ([]model.StatusChangeLog, int64, error) {
	var matched []model.StatusChangeLog
	for _, l := range m.logs {
		if l.MemberID == memberID {
			matched = append(matched, l)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// countFor returns the number of audit entries for one member and day.
func (m *mockStatusLogRepo) countFor(memberID string, day time.Time) int {
	n := 0
	for _, l := range m.logs {
		if l.MemberID == memberID && model.SameDay(l.Day, day) {
			n++
		}
	}
	return n
}
