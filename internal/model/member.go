package model

import (
	"strings"
	"time"
)

// Member roles for API authorization.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Member is one person on the fixed roster — maps to members.
type Member struct {
	MemberID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"member_id"`
	Rank      string `gorm:"type:varchar(60);not null"                      json:"rank"`
	FirstName string `gorm:"type:varchar(60);not null"                      json:"first_name"`
	LastName  string `gorm:"type:varchar(60);not null"                      json:"last_name"`
	CodeHash  string `gorm:"type:varchar(100);not null"                     json:"-"`
	Role      string `gorm:"type:varchar(10);not null;default:'member'"     json:"role"` // admin | member
	SortOrder int    `gorm:"not null;default:0"                             json:"sort_order"`
	VersionedModel
}

func (Member) TableName() string { return "members" }

// FullIdentity returns the uppercase "<rank> <firstName> <lastName>" form the
// unit uses on printed rosters.
func (m *Member) FullIdentity() string {
	return strings.ToUpper(strings.TrimSpace(m.Rank + " " + m.FirstName + " " + m.LastName))
}

// MemberDayRecord is a member's attendance status and meal reservation for
// one calendar day — maps to member_day_records. A missing row means
// StatusUnspecified with no meal reservation.
type MemberDayRecord struct {
	RecordID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"record_id"`
	MemberID     string     `gorm:"type:uuid;not null;uniqueIndex:uq_member_day"    json:"member_id"`
	Day          time.Time  `gorm:"type:date;not null;uniqueIndex:uq_member_day"    json:"day"`
	Status       StatusKind `gorm:"type:varchar(20);not null"                       json:"status"`
	MealReserved bool       `gorm:"not null;default:false"                          json:"meal_reserved"`
	VersionedModel

	Member *Member `gorm:"foreignKey:MemberID;references:MemberID" json:"member,omitempty"`
}

func (MemberDayRecord) TableName() string { return "member_day_records" }
