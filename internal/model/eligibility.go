package model

// EligibilityRule allows one member to fill one duty role — maps to
// eligibility_rules. A role with no rows is open to everyone.
type EligibilityRule struct {
	RuleID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"     json:"rule_id"`
	Role     string `gorm:"type:varchar(50);not null;uniqueIndex:uq_elig_role" json:"role"`
	MemberID string `gorm:"type:uuid;not null;uniqueIndex:uq_elig_role"        json:"member_id"`
	BaseModel

	Member *Member `gorm:"foreignKey:MemberID;references:MemberID" json:"member,omitempty"`
}

func (EligibilityRule) TableName() string { return "eligibility_rules" }
