package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Andrei050191/La-serviciu/internal/model"
)

// StatusLogRepository is the data-access interface for the status audit
// trail. Append only.
type StatusLogRepository interface {
	Create(ctx context.Context, log *model.StatusChangeLog) error
	ListByMember(ctx context.Context, memberID string, offset, limit int) ([]model.StatusChangeLog, int64, error)
}

type statusLogRepo struct {
	db *gorm.DB
}

func NewStatusLogRepo(db *gorm.DB) StatusLogRepository {
	return &statusLogRepo{db: db}
}

func (r *statusLogRepo) Create(ctx context.Context, log *model.StatusChangeLog) error {
	log.Day = model.NormalizeDay(log.Day)
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *statusLogRepo) ListByMember(ctx context.Context, memberID string, offset, limit int) ([]model.StatusChangeLog, int64, error) {
	var logs []model.StatusChangeLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.StatusChangeLog{}).
		Where("member_id = ?", memberID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, total, err
}
