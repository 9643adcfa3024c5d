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

var ErrInvalidStatus = errors.New("unknown attendance status")

// StatusService handles direct user-initiated status edits, the meal toggle
// and the audit trail. Roster-driven status writes go through the roster
// service instead; the audit source column keeps the two distinguishable.
type StatusService interface {
	SetStatus(ctx context.Context, memberID string, day time.Time, status model.StatusKind, operatorID string) (*dto.DayRecordResponse, error)
	// ToggleMeal flips the reservation when the meal gate is open and is a
	// silent no-op otherwise.
	ToggleMeal(ctx context.Context, memberID string, day time.Time, operatorID string) (*dto.DayRecordResponse, error)
	ListChangeLogs(ctx context.Context, memberID string, page, pageSize int) (*dto.StatusLogListResponse, error)
}

type statusService struct {
	repo        *repository.Repository
	horizonDays int
	notifier    Notifier
	logger      *zap.Logger
}

func NewStatusService(repo *repository.Repository, cfg *config.Config, notifier Notifier, logger *zap.Logger) StatusService {
	return &statusService{
		repo:        repo,
		horizonDays: cfg.Roster.HorizonDays,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *statusService) SetStatus(ctx context.Context, memberID string, day time.Time, status model.StatusKind, operatorID string) (*dto.DayRecordResponse, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	day = model.NormalizeDay(day)

	run := func(tx *repository.Repository) error {
		if _, err := tx.Member.GetByID(ctx, memberID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownMember
			}
			return err
		}

		// direct edits bypass role assignment, so the adjacent-day rule is
		// enforced here independently of the roster validation
		if status == model.StatusOnDuty {
			prev, err := tx.DayRecord.Get(ctx, memberID, day.AddDate(0, 0, -1))
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if prev != nil && prev.Status == model.StatusOnDuty {
				return ErrConsecutiveDuty
			}
		}

		if _, err := applyStatus(ctx, tx, statusWrite{
			memberID:   memberID,
			day:        day,
			status:     status,
			source:     model.SourceUser,
			operatorID: operatorID,
		}); err != nil {
			return err
		}

		if status == model.StatusOnDuty {
			return propagateAfterDuty(ctx, tx, memberID, day, s.horizonDays, model.SourceUser, operatorID)
		}
		return nil
	}

	if err := s.runWithRetry(ctx, run); err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, dto.ChangeEvent{
		Type:     dto.EventStatus,
		Day:      model.DayKey(day),
		MemberID: memberID,
	})

	return s.dayRecord(ctx, memberID, day)
}

func (s *statusService) ToggleMeal(ctx context.Context, memberID string, day time.Time, operatorID string) (*dto.DayRecordResponse, error) {
	day = model.NormalizeDay(day)
	var toggled bool

	run := func(tx *repository.Repository) error {
		toggled = false
		rec, err := tx.DayRecord.GetForUpdate(ctx, memberID, day)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// no record means unspecified: the gate is closed
			return nil
		}
		if err != nil {
			return err
		}
		if !model.MealEligible(rec.Status) {
			return nil
		}

		rec.MealReserved = !rec.MealReserved
		rec.UpdatedBy = &operatorID
		if err := tx.DayRecord.Update(ctx, rec); err != nil {
			return err
		}
		toggled = true
		return nil
	}

	if err := s.runWithRetry(ctx, run); err != nil {
		return nil, err
	}

	if toggled {
		s.notifier.Publish(ctx, dto.ChangeEvent{
			Type:     dto.EventMeal,
			Day:      model.DayKey(day),
			MemberID: memberID,
		})
	}

	return s.dayRecord(ctx, memberID, day)
}

func (s *statusService) ListChangeLogs(ctx context.Context, memberID string, page, pageSize int) (*dto.StatusLogListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	logs, total, err := s.repo.StatusLog.ListByMember(ctx, memberID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	resp := &dto.StatusLogListResponse{
		Total: total,
		List:  make([]dto.StatusLogResponse, 0, len(logs)),
	}
	for _, l := range logs {
		resp.List = append(resp.List, dto.StatusLogResponse{
			Day:       model.DayKey(l.Day),
			OldStatus: string(l.OldStatus),
			NewStatus: string(l.NewStatus),
			Source:    l.Source,
			Operator:  l.OperatorID,
			CreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}

func (s *statusService) runWithRetry(ctx context.Context, fn func(tx *repository.Repository) error) error {
	err := s.repo.Transaction(ctx, fn)
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		s.logger.Warn("stale status write, retrying once")
		err = s.repo.Transaction(ctx, fn)
	}
	return err
}

func (s *statusService) dayRecord(ctx context.Context, memberID string, day time.Time) (*dto.DayRecordResponse, error) {
	rec, err := s.repo.DayRecord.Get(ctx, memberID, day)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &dto.DayRecordResponse{
			Status:      string(model.StatusUnspecified),
			StatusLabel: model.StatusUnspecified.Label(),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &dto.DayRecordResponse{
		Status:       string(rec.Status),
		StatusLabel:  rec.Status.Label(),
		MealReserved: rec.MealReserved,
	}, nil
}
