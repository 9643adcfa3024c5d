package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every data-access interface.
type Repository struct {
	db *gorm.DB

	Member      MemberRepository
	DayRecord   DayRecordRepository
	DutyDay     DutyDayRepository
	Eligibility EligibilityRepository
	StatusLog   StatusLogRepository
}

// NewRepository builds the aggregate over a gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		Member:      NewMemberRepo(db),
		DayRecord:   NewDayRecordRepo(db),
		DutyDay:     NewDutyDayRepo(db),
		Eligibility: NewEligibilityRepo(db),
		StatusLog:   NewStatusLogRepo(db),
	}
}

// Transaction runs fn against a transaction-bound aggregate. Roster and
// status writes that must land together go through here so the roster
// document and the affected day records commit or roll back as one unit.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		// aggregate assembled without a database (test doubles)
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
