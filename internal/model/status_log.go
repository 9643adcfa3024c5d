package model

import "time"

// Sources of a status write, kept in the audit trail so a manual correction
// is never mistaken for (or silently overwritten by) a roster propagation.
const (
	SourceUser       = "user"
	SourceRosterSync = "roster_sync"
)

// StatusChangeLog records one status write — maps to status_change_logs.
// Pure audit data, append only.
type StatusChangeLog struct {
	LogID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	MemberID   string     `gorm:"type:uuid;not null"                             json:"member_id"`
	Day        time.Time  `gorm:"type:date;not null"                             json:"day"`
	OldStatus  StatusKind `gorm:"type:varchar(20);not null"                      json:"old_status"`
	NewStatus  StatusKind `gorm:"type:varchar(20);not null"                      json:"new_status"`
	Source     string     `gorm:"type:varchar(20);not null"                      json:"source"` // user | roster_sync
	OperatorID string     `gorm:"type:varchar(40);not null"                      json:"operator_id"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (StatusChangeLog) TableName() string { return "status_change_logs" }
