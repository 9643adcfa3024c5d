package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Andrei050191/La-serviciu/internal/model"
)

// EligibilityRepository is the data-access interface for per-role
// allow-lists. Read-only to the engine; written by the admin API.
type EligibilityRepository interface {
	ListAll(ctx context.Context) ([]model.EligibilityRule, error)
	ListByRole(ctx context.Context, role string) ([]model.EligibilityRule, error)
	// ReplaceRole swaps a role's whole allow-list in one transaction.
	ReplaceRole(ctx context.Context, role string, memberIDs []string, operatorID string) error
}

type eligibilityRepo struct {
	db *gorm.DB
}

func NewEligibilityRepo(db *gorm.DB) EligibilityRepository {
	return &eligibilityRepo{db: db}
}

func (r *eligibilityRepo) ListAll(ctx context.Context) ([]model.EligibilityRule, error) {
	var rules []model.EligibilityRule
	err := r.db.WithContext(ctx).
		Order("role ASC").
		Find(&rules).Error
	return rules, err
}

func (r *eligibilityRepo) ListByRole(ctx context.Context, role string) ([]model.EligibilityRule, error) {
	var rules []model.EligibilityRule
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Find(&rules).Error
	return rules, err
}

func (r *eligibilityRepo) ReplaceRole(ctx context.Context, role string, memberIDs []string, operatorID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role = ?", role).Delete(&model.EligibilityRule{}).Error; err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return nil
		}
		rules := make([]model.EligibilityRule, 0, len(memberIDs))
		for _, id := range memberIDs {
			rules = append(rules, model.EligibilityRule{
				Role:     role,
				MemberID: id,
				BaseModel: model.BaseModel{
					CreatedBy: &operatorID,
					UpdatedBy: &operatorID,
				},
			})
		}
		return tx.Create(&rules).Error
	})
}
