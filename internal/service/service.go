package service

import (
	"go.uber.org/zap"

	"github.com/Andrei050191/La-serviciu/config"
	"github.com/Andrei050191/La-serviciu/internal/repository"
	"github.com/Andrei050191/La-serviciu/pkg/jwt"
	"github.com/Andrei050191/La-serviciu/pkg/redis"
)

// Services aggregates every business service.
type Services struct {
	Auth        AuthService
	Member      MemberService
	Status      StatusService
	Roster      RosterService
	Eligibility EligibilityService
	Summary     SummaryService
	Export      ExportService
}

// NewServices wires the business layer. cache may be nil; everything that
// uses it degrades gracefully.
func NewServices(
	repo *repository.Repository,
	cfg *config.Config,
	jwtManager *jwt.Manager,
	cache *redis.Client,
	notifier Notifier,
	logger *zap.Logger,
) *Services {
	return &Services{
		Auth:        NewAuthService(repo, cfg, jwtManager, cache, logger),
		Member:      NewMemberService(repo, cfg, notifier, logger),
		Status:      NewStatusService(repo, cfg, notifier, logger),
		Roster:      NewRosterService(repo, cfg, notifier, logger),
		Eligibility: NewEligibilityService(repo, notifier, logger),
		Summary:     NewSummaryService(repo, cache, logger),
		Export:      NewExportService(repo, logger),
	}
}
