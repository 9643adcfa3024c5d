package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Andrei050191/La-serviciu/internal/dto"
	"github.com/Andrei050191/La-serviciu/internal/service"
	"github.com/Andrei050191/La-serviciu/pkg/response"
)

// EligibilityHandler serves the per-role allow-list endpoints.
type EligibilityHandler struct {
	eligSvc service.EligibilityService
}

func NewEligibilityHandler(eligSvc service.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{eligSvc: eligSvc}
}

// List returns the allow-list of every role.
// GET /api/v1/eligibility
func (h *EligibilityHandler) List(c *gin.Context) {
	lists, err := h.eligSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": lists})
}

// SetRole replaces one role's allow-list.
// PUT /api/v1/eligibility/:role
func (h *EligibilityHandler) SetRole(c *gin.Context) {
	callerID, ok := MustGetMemberID(c)
	if !ok {
		return
	}

	var req dto.SetEligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "member_ids must be a list of UUIDs")
		return
	}

	result, err := h.eligSvc.SetRole(c.Request.Context(), c.Param("role"), req.MemberIDs, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownRole):
			response.NotFound(c, 14101, "unknown duty role")
		case errors.Is(err, service.ErrUnknownMember):
			response.NotFound(c, 11101, "member not found")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}
