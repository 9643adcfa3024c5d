package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Andrei050191/La-serviciu/internal/model"
	pkgerrors "github.com/Andrei050191/La-serviciu/pkg/errors"
)

// MemberRepository is the data-access interface for the person directory.
type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	BatchCreate(ctx context.Context, members []model.Member) error
	GetByID(ctx context.Context, id string) (*model.Member, error)
	// List returns the whole directory in roster order.
	List(ctx context.Context) ([]model.Member, error)
	Update(ctx context.Context, member *model.Member) error
	Count(ctx context.Context) (int64, error)
}

type memberRepo struct {
	db *gorm.DB
}

func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) Create(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepo) BatchCreate(ctx context.Context, members []model.Member) error {
	if len(members) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&members).Error
}

func (r *memberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("member_id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) List(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).
		Order("sort_order ASC, last_name ASC").
		Find(&members).Error
	return members, err
}

func (r *memberRepo) Update(ctx context.Context, member *model.Member) error {
	oldVersion := member.Version
	result := r.db.WithContext(ctx).
		Model(member).
		Where("member_id = ? AND version = ?", member.MemberID, oldVersion).
		Updates(map[string]interface{}{
			"rank":       member.Rank,
			"first_name": member.FirstName,
			"last_name":  member.LastName,
			"code_hash":  member.CodeHash,
			"role":       member.Role,
			"sort_order": member.SortOrder,
			"updated_by": member.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	member.Version = oldVersion + 1
	return nil
}

func (r *memberRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Member{}).Count(&n).Error
	return n, err
}
