package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Andrei050191/La-serviciu/internal/model"
	pkgerrors "github.com/Andrei050191/La-serviciu/pkg/errors"
)

// MemberDuty is one (day, slot) a member is assigned to, used for personal
// calendar feeds.
type MemberDuty struct {
	Day       time.Time
	SlotIndex int
}

// DutyDayRepository is the data-access interface for the duty calendar.
type DutyDayRepository interface {
	GetByDay(ctx context.Context, day time.Time) (*model.DutyDay, error)
	// GetByDayForUpdate locks the duty-day row; every roster writer takes
	// this lock first, which serializes all slot writes for the day.
	GetByDayForUpdate(ctx context.Context, day time.Time) (*model.DutyDay, error)
	Create(ctx context.Context, dd *model.DutyDay) error
	UpdateDay(ctx context.Context, dd *model.DutyDay) error
	UpdateSlot(ctx context.Context, slot *model.DutySlot) error
	ListRange(ctx context.Context, from, to time.Time) ([]model.DutyDay, error)
	ListMemberDuties(ctx context.Context, memberID string, from, to time.Time) ([]MemberDuty, error)
}

type dutyDayRepo struct {
	db *gorm.DB
}

func NewDutyDayRepo(db *gorm.DB) DutyDayRepository {
	return &dutyDayRepo{db: db}
}

func (r *dutyDayRepo) GetByDay(ctx context.Context, day time.Time) (*model.DutyDay, error) {
	var dd model.DutyDay
	err := r.db.WithContext(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("slot_index ASC")
		}).
		Where("day = ?", model.NormalizeDay(day)).
		First(&dd).Error
	if err != nil {
		return nil, err
	}
	return &dd, nil
}

func (r *dutyDayRepo) GetByDayForUpdate(ctx context.Context, day time.Time) (*model.DutyDay, error) {
	var dd model.DutyDay
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("day = ?", model.NormalizeDay(day)).
		First(&dd).Error
	if err != nil {
		return nil, err
	}
	// slots are loaded after the day lock is held, so they cannot move
	// underneath the transaction
	err = r.db.WithContext(ctx).
		Where("duty_day_id = ?", dd.DutyDayID).
		Order("slot_index ASC").
		Find(&dd.Slots).Error
	if err != nil {
		return nil, err
	}
	return &dd, nil
}

func (r *dutyDayRepo) Create(ctx context.Context, dd *model.DutyDay) error {
	dd.Day = model.NormalizeDay(dd.Day)
	return r.db.WithContext(ctx).Create(dd).Error
}

func (r *dutyDayRepo) UpdateDay(ctx context.Context, dd *model.DutyDay) error {
	oldVersion := dd.Version
	result := r.db.WithContext(ctx).
		Model(dd).
		Where("duty_day_id = ? AND version = ?", dd.DutyDayID, oldVersion).
		Updates(map[string]interface{}{
			"mode":       dd.Mode,
			"updated_by": dd.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	dd.Version = oldVersion + 1
	return nil
}

func (r *dutyDayRepo) UpdateSlot(ctx context.Context, slot *model.DutySlot) error {
	oldVersion := slot.Version
	result := r.db.WithContext(ctx).
		Model(slot).
		Where("duty_slot_id = ? AND version = ?", slot.DutySlotID, oldVersion).
		Updates(map[string]interface{}{
			"occupant_kind": slot.OccupantKind,
			"member_id":     slot.MemberID,
			"updated_by":    slot.UpdatedBy,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	slot.Version = oldVersion + 1
	return nil
}

func (r *dutyDayRepo) ListRange(ctx context.Context, from, to time.Time) ([]model.DutyDay, error) {
	var days []model.DutyDay
	err := r.db.WithContext(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("slot_index ASC")
		}).
		Where("day >= ? AND day <= ?", model.NormalizeDay(from), model.NormalizeDay(to)).
		Order("day ASC").
		Find(&days).Error
	return days, err
}

func (r *dutyDayRepo) ListMemberDuties(ctx context.Context, memberID string, from, to time.Time) ([]MemberDuty, error) {
	var duties []MemberDuty
	err := r.db.WithContext(ctx).
		Table("duty_slots").
		Select("duty_days.day AS day, duty_slots.slot_index AS slot_index").
		Joins("JOIN duty_days ON duty_days.duty_day_id = duty_slots.duty_day_id").
		Where("duty_slots.member_id = ? AND duty_slots.occupant_kind = ?", memberID, model.OccupantMember).
		Where("duty_days.day >= ? AND duty_days.day <= ?", model.NormalizeDay(from), model.NormalizeDay(to)).
		Where("duty_slots.deleted_at IS NULL AND duty_days.deleted_at IS NULL").
		Order("duty_days.day ASC, duty_slots.slot_index ASC").
		Scan(&duties).Error
	return duties, err
}
