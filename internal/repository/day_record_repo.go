package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Andrei050191/La-serviciu/internal/model"
	pkgerrors "github.com/Andrei050191/La-serviciu/pkg/errors"
)

// DayRecordRepository is the data-access interface for per-day attendance
// records. A missing row for (member, day) means StatusUnspecified.
type DayRecordRepository interface {
	Get(ctx context.Context, memberID string, day time.Time) (*model.MemberDayRecord, error)
	// GetForUpdate locks the row until the surrounding transaction commits.
	GetForUpdate(ctx context.Context, memberID string, day time.Time) (*model.MemberDayRecord, error)
	ListByDay(ctx context.Context, day time.Time) ([]model.MemberDayRecord, error)
	ListRange(ctx context.Context, from, to time.Time) ([]model.MemberDayRecord, error)
	ListByMemberRange(ctx context.Context, memberID string, from, to time.Time) ([]model.MemberDayRecord, error)
	Create(ctx context.Context, rec *model.MemberDayRecord) error
	Update(ctx context.Context, rec *model.MemberDayRecord) error
}

type dayRecordRepo struct {
	db *gorm.DB
}

func NewDayRecordRepo(db *gorm.DB) DayRecordRepository {
	return &dayRecordRepo{db: db}
}

func (r *dayRecordRepo) Get(ctx context.Context, memberID string, day time.Time) (*model.MemberDayRecord, error) {
	var rec model.MemberDayRecord
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND day = ?", memberID, model.NormalizeDay(day)).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *dayRecordRepo) GetForUpdate(ctx context.Context, memberID string, day time.Time) (*model.MemberDayRecord, error) {
	var rec model.MemberDayRecord
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ? AND day = ?", memberID, model.NormalizeDay(day)).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *dayRecordRepo) ListByDay(ctx context.Context, day time.Time) ([]model.MemberDayRecord, error) {
	var recs []model.MemberDayRecord
	err := r.db.WithContext(ctx).
		Where("day = ?", model.NormalizeDay(day)).
		Find(&recs).Error
	return recs, err
}

func (r *dayRecordRepo) ListRange(ctx context.Context, from, to time.Time) ([]model.MemberDayRecord, error) {
	var recs []model.MemberDayRecord
	err := r.db.WithContext(ctx).
		Where("day >= ? AND day <= ?", model.NormalizeDay(from), model.NormalizeDay(to)).
		Order("day ASC").
		Find(&recs).Error
	return recs, err
}

func (r *dayRecordRepo) ListByMemberRange(ctx context.Context, memberID string, from, to time.Time) ([]model.MemberDayRecord, error) {
	var recs []model.MemberDayRecord
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND day >= ? AND day <= ?",
			memberID, model.NormalizeDay(from), model.NormalizeDay(to)).
		Order("day ASC").
		Find(&recs).Error
	return recs, err
}

func (r *dayRecordRepo) Create(ctx context.Context, rec *model.MemberDayRecord) error {
	rec.Day = model.NormalizeDay(rec.Day)
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *dayRecordRepo) Update(ctx context.Context, rec *model.MemberDayRecord) error {
	oldVersion := rec.Version
	result := r.db.WithContext(ctx).
		Model(rec).
		Where("record_id = ? AND version = ?", rec.RecordID, oldVersion).
		Updates(map[string]interface{}{
			"status":        rec.Status,
			"meal_reserved": rec.MealReserved,
			"updated_by":    rec.UpdatedBy,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	rec.Version = oldVersion + 1
	return nil
}
