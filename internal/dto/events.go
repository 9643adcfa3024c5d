package dto

// Change-event types published after committed writes.
const (
	EventStatus      = "status"
	EventMeal        = "meal"
	EventRoster      = "roster"
	EventDayMode     = "day_mode"
	EventEligibility = "eligibility"
	EventDirectory   = "directory"
)

// ChangeEvent is the payload fanned out to connected clients so they can
// refresh the affected views.
type ChangeEvent struct {
	Type     string `json:"type"`
	Day      string `json:"day,omitempty"`
	MemberID string `json:"member_id,omitempty"`
	Role     string `json:"role,omitempty"`
	At       string `json:"at"` // RFC 3339
}
