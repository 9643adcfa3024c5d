package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/internal/repository"
)

// The synchronization bridge keeps per-day attendance status consistent with
// roster assignments. Every helper here runs inside the caller's transaction,
// so a roster write and the status deltas it implies commit or roll back as
// one unit.

// statusWrite describes one member-day status mutation.
type statusWrite struct {
	memberID string
	day      time.Time
	status   model.StatusKind
	// forceMealOff clears the meal reservation even when the new status
	// keeps the meal gate open. Used on release: handing a slot back to an
	// external occupant revokes the reservation along with the duty status.
	forceMealOff bool
	source       string // model.SourceUser | model.SourceRosterSync
	operatorID   string
}

// applyStatus upserts one member-day record. It is idempotent: when the
// stored state already matches, nothing is written and no audit entry is
// appended. Returns whether the status value actually changed.
func applyStatus(ctx context.Context, tx *repository.Repository, w statusWrite) (bool, error) {
	day := model.NormalizeDay(w.day)

	rec, err := tx.DayRecord.GetForUpdate(ctx, w.memberID, day)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if rec == nil {
		rec = &model.MemberDayRecord{
			MemberID: w.memberID,
			Day:      day,
			Status:   w.status,
		}
		rec.CreatedBy = &w.operatorID
		rec.UpdatedBy = &w.operatorID
		if err := tx.DayRecord.Create(ctx, rec); err != nil {
			return false, err
		}
		return true, appendStatusLog(ctx, tx, w, model.StatusUnspecified)
	}

	oldStatus := rec.Status
	newMeal := rec.MealReserved
	if w.forceMealOff || !model.MealEligible(w.status) {
		newMeal = false
	}
	if oldStatus == w.status && newMeal == rec.MealReserved {
		return false, nil
	}

	rec.Status = w.status
	rec.MealReserved = newMeal
	rec.UpdatedBy = &w.operatorID
	if err := tx.DayRecord.Update(ctx, rec); err != nil {
		return false, err
	}
	if oldStatus == w.status {
		return false, nil
	}
	return true, appendStatusLog(ctx, tx, w, oldStatus)
}

func appendStatusLog(ctx context.Context, tx *repository.Repository, w statusWrite, oldStatus model.StatusKind) error {
	return tx.StatusLog.Create(ctx, &model.StatusChangeLog{
		MemberID:   w.memberID,
		Day:        model.NormalizeDay(w.day),
		OldStatus:  oldStatus,
		NewStatus:  w.status,
		Source:     w.source,
		OperatorID: w.operatorID,
	})
}

// syncAssignment applies the status deltas implied by one slot change.
// Intervention roles are standby capacity layered atop an existing status,
// so they drive no status writes at all.
func syncAssignment(
	ctx context.Context,
	tx *repository.Repository,
	day time.Time,
	slotIndex int,
	prev, next model.Occupant,
	horizonDays int,
	operatorID string,
) error {
	if model.IsInterventionSlot(slotIndex) {
		return nil
	}

	// Release the previous occupant: back to present, reservation revoked.
	// Only the duty day itself is reverted; the after-duty record on day+1,
	// if any, stays for manual correction so a stale propagation can never
	// overwrite a later direct edit there.
	if prev.IsMember() && prev.MemberID != next.MemberID {
		_, err := applyStatus(ctx, tx, statusWrite{
			memberID:     prev.MemberID,
			day:          day,
			status:       model.StatusPresent,
			forceMealOff: true,
			source:       model.SourceRosterSync,
			operatorID:   operatorID,
		})
		if err != nil {
			return err
		}
	}

	if next.IsMember() {
		if _, err := applyStatus(ctx, tx, statusWrite{
			memberID:   next.MemberID,
			day:        day,
			status:     model.StatusOnDuty,
			source:     model.SourceRosterSync,
			operatorID: operatorID,
		}); err != nil {
			return err
		}
		return propagateAfterDuty(ctx, tx, next.MemberID, day, horizonDays, model.SourceRosterSync, operatorID)
	}
	return nil
}

// propagateAfterDuty sets day+1 to after-duty, unless day+1 falls outside
// the managed horizon.
func propagateAfterDuty(
	ctx context.Context,
	tx *repository.Repository,
	memberID string,
	day time.Time,
	horizonDays int,
	source, operatorID string,
) error {
	next := model.NormalizeDay(day).AddDate(0, 0, 1)
	if !withinHorizon(next, horizonDays) {
		return nil
	}
	_, err := applyStatus(ctx, tx, statusWrite{
		memberID:   memberID,
		day:        next,
		status:     model.StatusAfterDuty,
		source:     source,
		operatorID: operatorID,
	})
	return err
}

// withinHorizon reports whether day is no later than today + horizonDays.
// Past days are always in scope: corrections to history are allowed, the
// horizon only bounds forward propagation.
func withinHorizon(day time.Time, horizonDays int) bool {
	limit := model.NormalizeDay(time.Now()).AddDate(0, 0, horizonDays)
	return !model.NormalizeDay(day).After(limit)
}
