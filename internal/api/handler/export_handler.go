package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/internal/service"
	"github.com/Andrei050191/La-serviciu/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves the download endpoints.
type ExportHandler struct {
	exportSvc service.ExportService
}

func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// RosterWorkbook downloads the roster and attendance window as xlsx.
// GET /api/v1/export/roster?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ExportHandler) RosterWorkbook(c *gin.Context) {
	from, to, ok := bindDayWindow(c, 16001, 6)
	if !ok {
		return
	}

	f, err := h.exportSvc.RosterWorkbook(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, service.ErrRangeTooWide) {
			response.BadRequest(c, 16101, "requested day range is too wide")
			return
		}
		response.InternalError(c)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		response.InternalError(c)
		return
	}

	filename := fmt.Sprintf("servicii_%s_%s.xlsx", model.DayKey(from), model.DayKey(to))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// MyCalendar downloads the caller's duty assignments as an iCalendar feed.
// GET /api/v1/export/my-duties.ics?from=&to=
func (h *ExportHandler) MyCalendar(c *gin.Context) {
	memberID, ok := MustGetMemberID(c)
	if !ok {
		return
	}
	from, to, ok := bindDayWindow(c, 16001, 30)
	if !ok {
		return
	}

	feed, err := h.exportSvc.PersonalCalendar(c.Request.Context(), memberID, from, to)
	if err != nil {
		if errors.Is(err, service.ErrUnknownMember) {
			response.NotFound(c, 11101, "member not found")
			return
		}
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="servicii.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}
