package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/pkg/response"
)

// MustGetMemberID extracts the authenticated member id from the context.
// Returns false (with a 401 already written) when the auth middleware did
// not inject it; the caller should return immediately then.
func MustGetMemberID(c *gin.Context) (string, bool) {
	v, exists := c.Get("member_id")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// isAdmin reports whether the caller holds the admin role.
func isAdmin(c *gin.Context) bool {
	v, exists := c.Get("role")
	if !exists {
		return false
	}
	role, ok := v.(string)
	return ok && role == model.RoleAdmin
}

// mustActFor allows the operation when the caller is targetID or an admin.
// Writes a 403 and returns false otherwise.
func mustActFor(c *gin.Context, targetID string) bool {
	callerID, ok := MustGetMemberID(c)
	if !ok {
		return false
	}
	if callerID == targetID || isAdmin(c) {
		return true
	}
	response.Forbidden(c, 10003, "insufficient permissions")
	return false
}

// bindDayParam parses the :day path segment as YYYY-MM-DD.
func bindDayParam(c *gin.Context, code int) (time.Time, bool) {
	day, err := model.ParseDay(c.Param("day"))
	if err != nil {
		response.BadRequest(c, code, "day must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}

// bindDayWindow parses the optional from/to query window, defaulting to
// today .. today+defaultDays.
func bindDayWindow(c *gin.Context, code int, defaultDays int) (time.Time, time.Time, bool) {
	from := model.NormalizeDay(time.Now())
	to := from.AddDate(0, 0, defaultDays)

	if s := c.Query("from"); s != "" {
		parsed, err := model.ParseDay(s)
		if err != nil {
			response.BadRequest(c, code, "from must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if s := c.Query("to"); s != "" {
		parsed, err := model.ParseDay(s)
		if err != nil {
			response.BadRequest(c, code, "to must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	return from, to, true
}
