package model

import "time"

// The eight duty roles, filled per calendar day in this fixed order.
var RoleNames = [SlotCount]string{
	"Ajutor OSU",
	"Sergent de serviciu PCT",
	"Planton",
	"Patrulă",
	"Operator radio",
	"Intervenția 1",
	"Intervenția 2",
	"Responsabil",
}

const (
	// SlotCount is the number of role slots per duty day.
	SlotCount = 8

	// SlotIntervention1 and SlotIntervention2 are the standby roles. They
	// layer on top of a member's existing status instead of replacing it,
	// so assignment to them drives no status synchronization.
	SlotIntervention1 = 5
	SlotIntervention2 = 6
)

// Intervention modes for a duty day. Single-intervention days do not staff
// Intervenția 2. Wire values match the unit's original calendar document.
const (
	ModeSingleIntervention = "1"
	ModeDoubleIntervention = "2"
)

// ExternalLabel is the display name for a slot covered from outside the
// managed roster.
const ExternalLabel = "Din altă subunitate"

// RoleName returns the role filling slot index i, or "" when out of range.
func RoleName(i int) string {
	if i < 0 || i >= SlotCount {
		return ""
	}
	return RoleNames[i]
}

// ValidRole reports whether name is one of the eight duty roles.
func ValidRole(name string) bool {
	for _, r := range RoleNames {
		if r == name {
			return true
		}
	}
	return false
}

// IsInterventionSlot reports whether slot index i is a standby role.
func IsInterventionSlot(i int) bool {
	return i == SlotIntervention1 || i == SlotIntervention2
}

// ValidMode reports whether mode is a known intervention mode.
func ValidMode(mode string) bool {
	return mode == ModeSingleIntervention || mode == ModeDoubleIntervention
}

// ── occupants ──

// OccupantKind tags who fills a role slot.
type OccupantKind string

const (
	// OccupantMember means a roster member fills the slot.
	OccupantMember OccupantKind = "member"
	// OccupantExternal means the slot is covered from another unit, or is
	// simply unfilled — the unit's roster does not distinguish the two.
	OccupantExternal OccupantKind = "external"
)

// Occupant is the tagged slot value replacing the original's sentinel string.
type Occupant struct {
	Kind     OccupantKind `json:"kind"`
	MemberID string       `json:"member_id,omitempty"` // set when Kind == member
}

// External returns the external/unfilled occupant.
func External() Occupant {
	return Occupant{Kind: OccupantExternal}
}

// Assigned returns an occupant for a roster member.
func Assigned(memberID string) Occupant {
	return Occupant{Kind: OccupantMember, MemberID: memberID}
}

// IsMember reports whether the occupant is a roster member.
func (o Occupant) IsMember() bool {
	return o.Kind == OccupantMember && o.MemberID != ""
}

// ── duty calendar ──

// DutyDay is the full set of role assignments for one date — maps to
// duty_days. Created lazily on first write; a date with no row reads as
// all-external, double intervention.
type DutyDay struct {
	DutyDayID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"duty_day_id"`
	Day       time.Time `gorm:"type:date;not null;unique"                      json:"day"`
	Mode      string    `gorm:"type:varchar(1);not null;default:'2'"           json:"mode"`
	VersionedModel

	Slots []DutySlot `gorm:"foreignKey:DutyDayID" json:"slots,omitempty"`
}

func (DutyDay) TableName() string { return "duty_days" }

// DutySlot is one role assignment on a duty day — maps to duty_slots.
type DutySlot struct {
	DutySlotID   string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"duty_slot_id"`
	DutyDayID    string       `gorm:"type:uuid;not null;uniqueIndex:uq_duty_slot"    json:"duty_day_id"`
	SlotIndex    int          `gorm:"type:smallint;not null;uniqueIndex:uq_duty_slot" json:"slot_index"`
	OccupantKind OccupantKind `gorm:"type:varchar(10);not null;default:'external'"   json:"occupant_kind"`
	MemberID     *string      `gorm:"type:uuid"                                      json:"member_id,omitempty"`
	VersionedModel

	Member *Member `gorm:"foreignKey:MemberID;references:MemberID" json:"member,omitempty"`
}

func (DutySlot) TableName() string { return "duty_slots" }

// Occupant returns the slot's tagged occupant value.
func (s *DutySlot) Occupant() Occupant {
	if s.OccupantKind == OccupantMember && s.MemberID != nil && *s.MemberID != "" {
		return Assigned(*s.MemberID)
	}
	return External()
}

// SetOccupant writes the tagged occupant value into the slot columns.
func (s *DutySlot) SetOccupant(o Occupant) {
	if o.IsMember() {
		id := o.MemberID
		s.OccupantKind = OccupantMember
		s.MemberID = &id
		return
	}
	s.OccupantKind = OccupantExternal
	s.MemberID = nil
}

// NewDutyDay builds the lazily-created default for a date: every slot
// external, double intervention.
func NewDutyDay(day time.Time) *DutyDay {
	dd := &DutyDay{
		Day:  NormalizeDay(day),
		Mode: ModeDoubleIntervention,
	}
	dd.Slots = make([]DutySlot, SlotCount)
	for i := range dd.Slots {
		dd.Slots[i] = DutySlot{
			SlotIndex:    i,
			OccupantKind: OccupantExternal,
		}
	}
	return dd
}

// Slot returns the slot with index i, or nil when absent.
func (d *DutyDay) Slot(i int) *DutySlot {
	for j := range d.Slots {
		if d.Slots[j].SlotIndex == i {
			return &d.Slots[j]
		}
	}
	return nil
}

// MemberSlotIndex returns the index of the slot occupied by memberID, or -1.
// Slot 6 does not count on single-intervention days: the mode makes it
// structurally invalid even if a stale occupant is still stored.
func (d *DutyDay) MemberSlotIndex(memberID string) int {
	for j := range d.Slots {
		s := &d.Slots[j]
		if d.Mode == ModeSingleIntervention && s.SlotIndex == SlotIntervention2 {
			continue
		}
		if o := s.Occupant(); o.IsMember() && o.MemberID == memberID {
			return s.SlotIndex
		}
	}
	return -1
}
