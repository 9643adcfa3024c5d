package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Andrei050191/La-serviciu/internal/service"
	"github.com/Andrei050191/La-serviciu/pkg/response"
)

// SummaryHandler serves the derived day view.
type SummaryHandler struct {
	summarySvc service.SummaryService
}

func NewSummaryHandler(summarySvc service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summarySvc: summarySvc}
}

// Day returns the status counts and meal headcount for one day.
// GET /api/v1/summary/:day
func (h *SummaryHandler) Day(c *gin.Context) {
	day, ok := bindDayParam(c, 15001)
	if !ok {
		return
	}

	summary, err := h.summarySvc.DaySummary(c.Request.Context(), day)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, summary)
}
