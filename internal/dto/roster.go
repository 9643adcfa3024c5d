package dto

// SlotResponse is one role slot on a duty day.
type SlotResponse struct {
	Index    int     `json:"index"`
	Role     string  `json:"role"`
	Kind     string  `json:"kind"` // member | external
	MemberID *string `json:"member_id,omitempty"`
	// Label is the display form: the occupant's full identity, or
	// "Din altă subunitate" for external slots.
	Label string `json:"label"`
	// Disabled marks Intervenția 2 on single-intervention days.
	Disabled bool `json:"disabled,omitempty"`
}

// DutyDayResponse is a full roster day.
type DutyDayResponse struct {
	Day   string         `json:"day"`
	Mode  string         `json:"mode"` // "1" | "2"
	Slots []SlotResponse `json:"slots"`
}

// AssignRequest sets the occupant of one role slot.
type AssignRequest struct {
	Kind     string `json:"kind" binding:"required,oneof=member external"`
	MemberID string `json:"member_id" binding:"required_if=Kind member,omitempty,uuid"`
}

// SetDayModeRequest switches a day's intervention mode.
type SetDayModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=1 2"`
}
