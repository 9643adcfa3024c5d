package model

// StatusKind is a member's attendance status for one calendar day.
type StatusKind string

const (
	StatusPresent   StatusKind = "present"    // Prezent la serviciu
	StatusOnDuty    StatusKind = "on_duty"    // În serviciu
	StatusAfterDuty StatusKind = "after_duty" // După serviciu
	StatusDayOff    StatusKind = "day_off"    // Zi liberă
	StatusLeave     StatusKind = "leave"      // Concediu
	StatusDetached  StatusKind = "detached"   // Deplasare
	StatusSickLeave StatusKind = "sick_leave" // Foaie de boala

	// StatusUnspecified is the implicit state of a day with no record.
	// It is not a member of the enum and is never persisted.
	StatusUnspecified StatusKind = ""
)

// AllStatuses lists the seven persistable statuses.
var AllStatuses = []StatusKind{
	StatusPresent,
	StatusOnDuty,
	StatusAfterDuty,
	StatusDayOff,
	StatusLeave,
	StatusDetached,
	StatusSickLeave,
}

var statusLabels = map[StatusKind]string{
	StatusPresent:   "Prezent la serviciu",
	StatusOnDuty:    "În serviciu",
	StatusAfterDuty: "După serviciu",
	StatusDayOff:    "Zi liberă",
	StatusLeave:     "Concediu",
	StatusDetached:  "Deplasare",
	StatusSickLeave: "Foaie de boala",
}

// IsValid reports whether s is one of the seven persistable statuses.
func (s StatusKind) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the Romanian display name used on rosters and exports.
func (s StatusKind) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return "Nespecificat"
}

// MealEligibleStatuses is the meal-eligibility policy: the statuses in which
// a member may hold a cafeteria reservation. The deployed policy is strict —
// only present-at-work qualifies. Some units run a variant that also admits
// on-duty personnel; change the policy here, never at call sites.
var MealEligibleStatuses = []StatusKind{StatusPresent}

// MealEligible reports whether the meal gate is open for status s.
func MealEligible(s StatusKind) bool {
	for _, allowed := range MealEligibleStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}
