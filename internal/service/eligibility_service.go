package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Andrei050191/La-serviciu/internal/dto"
	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/internal/repository"
)

var ErrUnknownRole = errors.New("unknown duty role")

// EligibilityService manages per-role allow-lists. An empty list leaves the
// role open to everyone.
type EligibilityService interface {
	List(ctx context.Context) ([]dto.RoleEligibilityResponse, error)
	SetRole(ctx context.Context, role string, memberIDs []string, operatorID string) (*dto.RoleEligibilityResponse, error)
}

type eligibilityService struct {
	repo     *repository.Repository
	notifier Notifier
	logger   *zap.Logger
}

func NewEligibilityService(repo *repository.Repository, notifier Notifier, logger *zap.Logger) EligibilityService {
	return &eligibilityService{repo: repo, notifier: notifier, logger: logger}
}

func (s *eligibilityService) List(ctx context.Context) ([]dto.RoleEligibilityResponse, error) {
	rules, err := s.repo.Eligibility.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byRole := make(map[string][]string)
	for _, r := range rules {
		byRole[r.Role] = append(byRole[r.Role], r.MemberID)
	}

	// every role is reported, open roles with an empty list
	out := make([]dto.RoleEligibilityResponse, 0, model.SlotCount)
	for _, role := range model.RoleNames {
		ids := byRole[role]
		if ids == nil {
			ids = []string{}
		}
		out = append(out, dto.RoleEligibilityResponse{Role: role, MemberIDs: ids})
	}
	return out, nil
}

func (s *eligibilityService) SetRole(ctx context.Context, role string, memberIDs []string, operatorID string) (*dto.RoleEligibilityResponse, error) {
	if !model.ValidRole(role) {
		return nil, ErrUnknownRole
	}

	seen := make(map[string]bool, len(memberIDs))
	deduped := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.repo.Member.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownMember
			}
			return nil, err
		}
		deduped = append(deduped, id)
	}

	if err := s.repo.Eligibility.ReplaceRole(ctx, role, deduped, operatorID); err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, dto.ChangeEvent{Type: dto.EventEligibility, Role: role})

	return &dto.RoleEligibilityResponse{Role: role, MemberIDs: deduped}, nil
}
