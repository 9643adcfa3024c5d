package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Andrei050191/La-serviciu/internal/dto"
	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/internal/repository"
	"github.com/Andrei050191/La-serviciu/pkg/redis"
)

// summaryCacheTTL keeps the cached view short-lived instead of invalidating
// it on every write; clients also refresh on change events, so a briefly
// stale count is acceptable.
const summaryCacheTTL = 30 * time.Second

// SummaryService computes the derived per-day view: categorized status
// counts plus the cafeteria headcount.
type SummaryService interface {
	DaySummary(ctx context.Context, day time.Time) (*dto.DaySummaryResponse, error)
}

type summaryService struct {
	repo   *repository.Repository
	cache  *redis.Client
	logger *zap.Logger
}

func NewSummaryService(repo *repository.Repository, cache *redis.Client, logger *zap.Logger) SummaryService {
	return &summaryService{repo: repo, cache: cache, logger: logger}
}

func (s *summaryService) DaySummary(ctx context.Context, day time.Time) (*dto.DaySummaryResponse, error) {
	dayKey := model.DayKey(day)

	if s.cache != nil {
		if cached, err := s.cache.GetDaySummary(ctx, dayKey); err != nil {
			s.logger.Warn("reading summary cache", zap.Error(err))
		} else if cached != "" {
			var resp dto.DaySummaryResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
		}
	}

	members, err := s.repo.Member.List(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.DayRecord.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}

	resp := &dto.DaySummaryResponse{
		Day:    dayKey,
		Counts: make(map[string]int, len(model.AllStatuses)),
		Total:  len(members),
	}
	for _, st := range model.AllStatuses {
		resp.Counts[string(st)] = 0
	}

	recorded := 0
	for _, rec := range recs {
		if rec.Status.IsValid() {
			resp.Counts[string(rec.Status)]++
			recorded++
		}
		if rec.MealReserved {
			resp.MealHeadcount++
		}
	}
	resp.Unspecified = len(members) - recorded
	if resp.Unspecified < 0 {
		resp.Unspecified = 0
	}

	if s.cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := s.cache.SetDaySummary(ctx, dayKey, string(payload), summaryCacheTTL); err != nil {
				s.logger.Warn("writing summary cache", zap.Error(err))
			}
		}
	}
	return resp, nil
}
