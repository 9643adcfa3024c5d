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

// importMaxBytes caps the uploaded workbook size.
const importMaxBytes = 5 << 20

// MemberHandler serves the person directory and the per-member status and
// meal endpoints.
type MemberHandler struct {
	memberSvc service.MemberService
	statusSvc service.StatusService
}

func NewMemberHandler(memberSvc service.MemberService, statusSvc service.StatusService) *MemberHandler {
	return &MemberHandler{memberSvc: memberSvc, statusSvc: statusSvc}
}

// List returns the directory with day records for the requested window.
// GET /api/v1/members?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *MemberHandler) List(c *gin.Context) {
	from, to, ok := bindDayWindow(c, 11001, 3)
	if !ok {
		return
	}

	members, err := h.memberSvc.List(c.Request.Context(), from, to)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": members})
}

// Me returns the caller's entry with its day records.
// GET /api/v1/members/me?from=&to=
func (h *MemberHandler) Me(c *gin.Context) {
	memberID, ok := MustGetMemberID(c)
	if !ok {
		return
	}
	from, to, ok := bindDayWindow(c, 11001, 3)
	if !ok {
		return
	}

	member, err := h.memberSvc.Get(c.Request.Context(), memberID, from, to)
	if err != nil {
		h.handleMemberError(c, err)
		return
	}
	response.OK(c, member)
}

// Get returns one member's entry with its day records.
// GET /api/v1/members/:id?from=&to=
func (h *MemberHandler) Get(c *gin.Context) {
	from, to, ok := bindDayWindow(c, 11001, 3)
	if !ok {
		return
	}

	member, err := h.memberSvc.Get(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		h.handleMemberError(c, err)
		return
	}
	response.OK(c, member)
}

// SetStatus sets a member's attendance status for one day.
// Admins may edit anyone; members only themselves.
// PUT /api/v1/members/:id/status
func (h *MemberHandler) SetStatus(c *gin.Context) {
	targetID := c.Param("id")
	if !mustActFor(c, targetID) {
		return
	}
	callerID, _ := MustGetMemberID(c)

	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "day and status are required")
		return
	}
	day, err := model.ParseDay(req.Day)
	if err != nil {
		response.BadRequest(c, 12001, "day must be YYYY-MM-DD")
		return
	}

	rec, err := h.statusSvc.SetStatus(c.Request.Context(), targetID, day, model.StatusKind(req.Status), callerID)
	if err != nil {
		h.handleStatusError(c, err)
		return
	}
	response.OK(c, rec)
}

// ToggleMeal flips a member's meal reservation for one day.
// PUT /api/v1/members/:id/meal
func (h *MemberHandler) ToggleMeal(c *gin.Context) {
	targetID := c.Param("id")
	if !mustActFor(c, targetID) {
		return
	}
	callerID, _ := MustGetMemberID(c)

	var req dto.ToggleMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "day is required")
		return
	}
	day, err := model.ParseDay(req.Day)
	if err != nil {
		response.BadRequest(c, 12001, "day must be YYYY-MM-DD")
		return
	}

	rec, err := h.statusSvc.ToggleMeal(c.Request.Context(), targetID, day, callerID)
	if err != nil {
		h.handleStatusError(c, err)
		return
	}
	response.OK(c, rec)
}

// StatusLogs returns the audit trail for one member.
// GET /api/v1/members/:id/status-logs?page=&page_size=
func (h *MemberHandler) StatusLogs(c *gin.Context) {
	targetID := c.Param("id")
	if !mustActFor(c, targetID) {
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	logs, err := h.statusSvc.ListChangeLogs(c.Request.Context(), targetID, page, pageSize)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, logs)
}

// Import creates members from an uploaded workbook.
// POST /api/v1/members/import (multipart field "file")
func (h *MemberHandler) Import(c *gin.Context) {
	callerID, ok := MustGetMemberID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 11002, "multipart field 'file' is required")
		return
	}
	if fileHeader.Size > importMaxBytes {
		response.BadRequest(c, 11003, "file too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer f.Close()

	result, err := h.memberSvc.ImportMembers(c.Request.Context(), f, callerID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidImportFile) {
			response.BadRequest(c, 11004, "file is not a readable workbook")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ── error mapping ──

func (h *MemberHandler) handleMemberError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUnknownMember) {
		response.NotFound(c, 11101, "member not found")
		return
	}
	response.InternalError(c)
}

func (h *MemberHandler) handleStatusError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownMember):
		response.NotFound(c, 11101, "member not found")
	case errors.Is(err, service.ErrInvalidStatus):
		response.BadRequest(c, 12101, "unknown attendance status")
	case errors.Is(err, service.ErrConsecutiveDuty):
		response.Conflict(c, 12102, "member already on duty the previous day")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12103, "record changed concurrently, please retry")
	default:
		response.InternalError(c)
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
