package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Andrei050191/La-serviciu/internal/dto"
	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/internal/service"
	pkgerrors "github.com/Andrei050191/La-serviciu/pkg/errors"
	"github.com/Andrei050191/La-serviciu/pkg/response"
)

// RosterHandler serves the duty calendar endpoints.
type RosterHandler struct {
	rosterSvc service.RosterService
}

func NewRosterHandler(rosterSvc service.RosterService) *RosterHandler {
	return &RosterHandler{rosterSvc: rosterSvc}
}

// GetRange returns the roster days in the requested window.
// GET /api/v1/roster?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *RosterHandler) GetRange(c *gin.Context) {
	from, to, ok := bindDayWindow(c, 13001, 6)
	if !ok {
		return
	}

	days, err := h.rosterSvc.GetRange(c.Request.Context(), from, to)
	if err != nil {
		h.handleRosterError(c, err)
		return
	}
	response.OK(c, gin.H{"list": days})
}

// GetDay returns one roster day.
// GET /api/v1/roster/:day
func (h *RosterHandler) GetDay(c *gin.Context) {
	day, ok := bindDayParam(c, 13001)
	if !ok {
		return
	}

	dd, err := h.rosterSvc.GetDay(c.Request.Context(), day)
	if err != nil {
		h.handleRosterError(c, err)
		return
	}
	response.OK(c, dd)
}

// Assign sets the occupant of one role slot.
// PUT /api/v1/roster/:day/slots/:index
func (h *RosterHandler) Assign(c *gin.Context) {
	callerID, ok := MustGetMemberID(c)
	if !ok {
		return
	}
	day, ok := bindDayParam(c, 13001)
	if !ok {
		return
	}
	slotIndex, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, 13001, "slot index must be an integer")
		return
	}

	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "kind must be member or external")
		return
	}

	occupant := model.External()
	if req.Kind == string(model.OccupantMember) {
		occupant = model.Assigned(req.MemberID)
	}

	dd, err := h.rosterSvc.Assign(c.Request.Context(), day, slotIndex, occupant, callerID)
	if err != nil {
		h.handleRosterError(c, err)
		return
	}
	response.OK(c, dd)
}

// SetDayMode switches a day's intervention mode.
// PUT /api/v1/roster/:day/mode
func (h *RosterHandler) SetDayMode(c *gin.Context) {
	callerID, ok := MustGetMemberID(c)
	if !ok {
		return
	}
	day, ok := bindDayParam(c, 13001)
	if !ok {
		return
	}

	var req dto.SetDayModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "mode must be 1 or 2")
		return
	}

	dd, err := h.rosterSvc.SetDayMode(c.Request.Context(), day, req.Mode, callerID)
	if err != nil {
		h.handleRosterError(c, err)
		return
	}
	response.OK(c, dd)
}

func (h *RosterHandler) handleRosterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSlot):
		response.BadRequest(c, 13101, "slot index out of range")
	case errors.Is(err, service.ErrInvalidMode):
		response.BadRequest(c, 13102, "unknown intervention mode")
	case errors.Is(err, service.ErrSlotDisabled):
		response.BadRequest(c, 13103, "slot is disabled on single-intervention days")
	case errors.Is(err, service.ErrUnknownMember):
		response.NotFound(c, 11101, "member not found")
	case errors.Is(err, service.ErrDuplicateAssignment):
		response.Conflict(c, 13104, "member already holds another role this day")
	case errors.Is(err, service.ErrConsecutiveDuty):
		response.Conflict(c, 13105, "member holds a duty role on an adjacent day")
	case errors.Is(err, service.ErrIneligiblePerson):
		response.Conflict(c, 13106, "member is not on this role's eligibility list")
	case errors.Is(err, service.ErrRangeTooWide):
		response.BadRequest(c, 13107, "requested day range is too wide")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13108, "roster changed concurrently, please retry")
	default:
		response.InternalError(c)
	}
}
