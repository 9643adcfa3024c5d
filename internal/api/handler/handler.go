package handler

import (
	"github.com/Andrei050191/La-serviciu/internal/service"
	"github.com/Andrei050191/La-serviciu/pkg/redis"
)

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth        *AuthHandler
	Member      *MemberHandler
	Roster      *RosterHandler
	Eligibility *EligibilityHandler
	Summary     *SummaryHandler
	Export      *ExportHandler
	Events      *EventsHandler
}

// NewHandler builds the handler aggregate. rdb may be nil; the events
// endpoint reports itself unavailable then.
func NewHandler(svc *service.Services, rdb *redis.Client) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Member:      NewMemberHandler(svc.Member, svc.Status),
		Roster:      NewRosterHandler(svc.Roster),
		Eligibility: NewEligibilityHandler(svc.Eligibility),
		Summary:     NewSummaryHandler(svc.Summary),
		Export:      NewExportHandler(svc.Export),
		Events:      NewEventsHandler(rdb),
	}
}
