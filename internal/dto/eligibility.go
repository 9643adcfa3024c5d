package dto

// RoleEligibilityResponse is one role's allow-list. An empty list means the
// role is open to everyone.
type RoleEligibilityResponse struct {
	Role      string   `json:"role"`
	MemberIDs []string `json:"member_ids"`
}

// SetEligibilityRequest replaces one role's allow-list.
type SetEligibilityRequest struct {
	MemberIDs []string `json:"member_ids" binding:"required,dive,uuid"`
}
