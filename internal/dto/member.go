package dto

// MemberResponse is a directory entry.
type MemberResponse struct {
	ID        string `json:"id"`
	Rank      string `json:"rank"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	SortOrder int    `json:"sort_order"`
}

// DayRecordResponse is one day's attendance state.
type DayRecordResponse struct {
	Status       string `json:"status"`
	StatusLabel  string `json:"status_label"`
	MealReserved bool   `json:"meal_reserved"`
}

// MemberWithDaysResponse is a directory entry plus its day records for the
// requested window, keyed by YYYY-MM-DD. Days without a record are omitted
// and read as unspecified.
type MemberWithDaysResponse struct {
	MemberResponse
	Days map[string]DayRecordResponse `json:"days"`
}

// SetStatusRequest is a direct status edit for one day.
type SetStatusRequest struct {
	Day    string `json:"day"    binding:"required"`
	Status string `json:"status" binding:"required"`
}

// ToggleMealRequest flips the caller's meal reservation for one day.
type ToggleMealRequest struct {
	Day string `json:"day" binding:"required"`
}

// ── import ──

// ImportMemberError describes one rejected spreadsheet row.
type ImportMemberError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportMembersResponse summarizes a directory import.
type ImportMembersResponse struct {
	Total   int                 `json:"total"`
	Created int                 `json:"created"`
	Failed  int                 `json:"failed"`
	Errors  []ImportMemberError `json:"errors,omitempty"`
}

// ── audit trail ──

// StatusLogResponse is one audit entry for a status write.
type StatusLogResponse struct {
	Day       string `json:"day"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Source    string `json:"source"`
	Operator  string `json:"operator_id"`
	CreatedAt string `json:"created_at"`
}

// StatusLogListResponse is a paginated audit listing.
type StatusLogListResponse struct {
	List  []StatusLogResponse `json:"list"`
	Total int64               `json:"total"`
}
