package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Andrei050191/La-serviciu/config"
	"github.com/Andrei050191/La-serviciu/internal/dto"
	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/internal/repository"
	pkgerrors "github.com/Andrei050191/La-serviciu/pkg/errors"
)

var (
	ErrInvalidSlot         = errors.New("slot index out of range")
	ErrInvalidMode         = errors.New("unknown intervention mode")
	ErrSlotDisabled        = errors.New("slot is disabled on single-intervention days")
	ErrUnknownMember       = errors.New("member not found")
	ErrDuplicateAssignment = errors.New("member already holds another role slot this day")
	ErrConsecutiveDuty     = errors.New("member holds a duty role on an adjacent day")
	ErrIneligiblePerson    = errors.New("member is not on the role's eligibility list")
	ErrRangeTooWide        = errors.New("requested day range is too wide")
)

// maxRangeDays bounds calendar range queries.
const maxRangeDays = 62

// RosterService maintains the duty calendar: per day, the ordered role→person
// assignments plus the intervention mode. Every write runs as one server-side
// transaction covering the roster row and the affected members' day records.
type RosterService interface {
	GetDay(ctx context.Context, day time.Time) (*dto.DutyDayResponse, error)
	GetRange(ctx context.Context, from, to time.Time) ([]dto.DutyDayResponse, error)
	Assign(ctx context.Context, day time.Time, slotIndex int, next model.Occupant, operatorID string) (*dto.DutyDayResponse, error)
	SetDayMode(ctx context.Context, day time.Time, mode string, operatorID string) (*dto.DutyDayResponse, error)
}

type rosterService struct {
	repo        *repository.Repository
	horizonDays int
	notifier    Notifier
	logger      *zap.Logger
}

func NewRosterService(repo *repository.Repository, cfg *config.Config, notifier Notifier, logger *zap.Logger) RosterService {
	return &rosterService{
		repo:        repo,
		horizonDays: cfg.Roster.HorizonDays,
		notifier:    notifier,
		logger:      logger,
	}
}

// ── reads ──

func (s *rosterService) GetDay(ctx context.Context, day time.Time) (*dto.DutyDayResponse, error) {
	dd, err := s.repo.DutyDay.GetByDay(ctx, day)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// days never written read as the lazy default
		dd = model.NewDutyDay(day)
	} else if err != nil {
		return nil, err
	}

	labels, err := s.memberLabels(ctx)
	if err != nil {
		return nil, err
	}
	return dutyDayResponse(dd, labels), nil
}

func (s *rosterService) GetRange(ctx context.Context, from, to time.Time) ([]dto.DutyDayResponse, error) {
	from, to = model.NormalizeDay(from), model.NormalizeDay(to)
	if to.Before(from) {
		from, to = to, from
	}
	if int(to.Sub(from).Hours()/24) >= maxRangeDays {
		return nil, ErrRangeTooWide
	}

	days, err := s.repo.DutyDay.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	labels, err := s.memberLabels(ctx)
	if err != nil {
		return nil, err
	}

	stored := make(map[string]*model.DutyDay, len(days))
	for i := range days {
		stored[model.DayKey(days[i].Day)] = &days[i]
	}

	var out []dto.DutyDayResponse
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dd, ok := stored[model.DayKey(d)]
		if !ok {
			dd = model.NewDutyDay(d)
		}
		out = append(out, *dutyDayResponse(dd, labels))
	}
	return out, nil
}

// ── writes ──

func (s *rosterService) Assign(ctx context.Context, day time.Time, slotIndex int, next model.Occupant, operatorID string) (*dto.DutyDayResponse, error) {
	if slotIndex < 0 || slotIndex >= model.SlotCount {
		return nil, ErrInvalidSlot
	}
	day = model.NormalizeDay(day)

	run := func(tx *repository.Repository) error {
		dd, err := s.lockDay(ctx, tx, day, operatorID)
		if err != nil {
			return err
		}
		if dd.Mode == model.ModeSingleIntervention && slotIndex == model.SlotIntervention2 {
			return ErrSlotDisabled
		}

		if next.IsMember() {
			if err := s.validateAssignment(ctx, tx, dd, day, slotIndex, next.MemberID); err != nil {
				return err
			}
		}

		slot := dd.Slot(slotIndex)
		if slot == nil {
			return ErrInvalidSlot
		}
		prev := slot.Occupant()

		if prev != next {
			slot.SetOccupant(next)
			slot.UpdatedBy = &operatorID
			if err := tx.DutyDay.UpdateSlot(ctx, slot); err != nil {
				return err
			}
		}

		return syncAssignment(ctx, tx, day, slotIndex, prev, next, s.horizonDays, operatorID)
	}

	if err := s.runWithRetry(ctx, run); err != nil {
		return nil, err
	}

	event := dto.ChangeEvent{Type: dto.EventRoster, Day: model.DayKey(day), Role: model.RoleName(slotIndex)}
	if next.IsMember() {
		event.MemberID = next.MemberID
	}
	s.notifier.Publish(ctx, event)

	return s.GetDay(ctx, day)
}

func (s *rosterService) SetDayMode(ctx context.Context, day time.Time, mode string, operatorID string) (*dto.DutyDayResponse, error) {
	if !model.ValidMode(mode) {
		return nil, ErrInvalidMode
	}
	day = model.NormalizeDay(day)

	run := func(tx *repository.Repository) error {
		dd, err := s.lockDay(ctx, tx, day, operatorID)
		if err != nil {
			return err
		}
		if dd.Mode == mode {
			return nil
		}

		dd.Mode = mode
		dd.UpdatedBy = &operatorID
		if err := tx.DutyDay.UpdateDay(ctx, dd); err != nil {
			return err
		}

		// Single intervention makes the second standby slot structurally
		// invalid: clear it. No status reversion — intervention roles never
		// drove a status write in the first place.
		if mode == model.ModeSingleIntervention {
			slot := dd.Slot(model.SlotIntervention2)
			if slot != nil && slot.Occupant().IsMember() {
				slot.SetOccupant(model.External())
				slot.UpdatedBy = &operatorID
				if err := tx.DutyDay.UpdateSlot(ctx, slot); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := s.runWithRetry(ctx, run); err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, dto.ChangeEvent{Type: dto.EventDayMode, Day: model.DayKey(day)})

	return s.GetDay(ctx, day)
}

// ── internals ──

// runWithRetry executes fn in a transaction, retrying exactly once when an
// optimistic-lock conflict is detected. The retry re-reads everything under
// fresh locks; a second conflict surfaces to the caller.
func (s *rosterService) runWithRetry(ctx context.Context, fn func(tx *repository.Repository) error) error {
	err := s.repo.Transaction(ctx, fn)
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		s.logger.Warn("stale roster write, retrying once")
		err = s.repo.Transaction(ctx, fn)
	}
	return err
}

// lockDay loads the duty day under a row lock, creating the default lazily.
// The day lock serializes every concurrent writer touching the same date.
func (s *rosterService) lockDay(ctx context.Context, tx *repository.Repository, day time.Time, operatorID string) (*model.DutyDay, error) {
	dd, err := tx.DutyDay.GetByDayForUpdate(ctx, day)
	if err == nil {
		return dd, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	dd = model.NewDutyDay(day)
	dd.CreatedBy = &operatorID
	dd.UpdatedBy = &operatorID
	if err := tx.DutyDay.Create(ctx, dd); err != nil {
		// lost the lazy-create race on the unique day index; the retry
		// re-reads the winner's row under lock
		s.logger.Debug("duty day create lost race", zap.String("day", model.DayKey(day)), zap.Error(err))
		return nil, pkgerrors.ErrOptimisticLock
	}
	return dd, nil
}

// validateAssignment enforces the compound constraints in order: duplicate,
// consecutive, eligibility. First failure wins and nothing is written.
func (s *rosterService) validateAssignment(
	ctx context.Context,
	tx *repository.Repository,
	dd *model.DutyDay,
	day time.Time,
	slotIndex int,
	memberID string,
) error {
	if _, err := tx.Member.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownMember
		}
		return err
	}

	// same-day uniqueness; occupying the target slot already is a no-op
	// reassignment, not a duplicate
	if idx := dd.MemberSlotIndex(memberID); idx != -1 && idx != slotIndex {
		return ErrDuplicateAssignment
	}

	// adjacent-day exclusion
	for _, offset := range []int{-1, 1} {
		adjacent, err := tx.DutyDay.GetByDay(ctx, day.AddDate(0, 0, offset))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if adjacent.MemberSlotIndex(memberID) != -1 {
			return ErrConsecutiveDuty
		}
	}

	// a non-empty allow-list closes the role to everyone outside it
	rules, err := tx.Eligibility.ListByRole(ctx, model.RoleName(slotIndex))
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		return nil
	}
	for _, r := range rules {
		if r.MemberID == memberID {
			return nil
		}
	}
	return ErrIneligiblePerson
}

func (s *rosterService) memberLabels(ctx context.Context) (map[string]string, error) {
	members, err := s.repo.Member.List(ctx)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(members))
	for i := range members {
		labels[members[i].MemberID] = members[i].FullIdentity()
	}
	return labels, nil
}

func dutyDayResponse(dd *model.DutyDay, labels map[string]string) *dto.DutyDayResponse {
	resp := &dto.DutyDayResponse{
		Day:   model.DayKey(dd.Day),
		Mode:  dd.Mode,
		Slots: make([]dto.SlotResponse, 0, model.SlotCount),
	}
	for i := 0; i < model.SlotCount; i++ {
		sr := dto.SlotResponse{
			Index:    i,
			Role:     model.RoleName(i),
			Kind:     string(model.OccupantExternal),
			Label:    model.ExternalLabel,
			Disabled: dd.Mode == model.ModeSingleIntervention && i == model.SlotIntervention2,
		}
		if slot := dd.Slot(i); slot != nil && !sr.Disabled {
			if o := slot.Occupant(); o.IsMember() {
				id := o.MemberID
				sr.Kind = string(model.OccupantMember)
				sr.MemberID = &id
				if label, ok := labels[id]; ok {
					sr.Label = label
				} else {
					sr.Label = id
				}
			}
		}
		resp.Slots = append(resp.Slots, sr)
	}
	return resp
}
