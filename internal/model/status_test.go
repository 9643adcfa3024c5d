package model

import (
	"testing"
	"time"
)

func TestStatusKind_IsValid(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.IsValid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if StatusUnspecified.IsValid() {
		t.Error("unspecified must not be a member of the enum")
	}
	if StatusKind("vacation").IsValid() {
		t.Error("unknown status must not validate")
	}
}

func TestStatusKind_Label(t *testing.T) {
	if got := StatusOnDuty.Label(); got != "În serviciu" {
		t.Errorf("expected În serviciu, got %q", got)
	}
	if got := StatusUnspecified.Label(); got != "Nespecificat" {
		t.Errorf("expected Nespecificat, got %q", got)
	}
}

func TestMealEligible_StrictPolicy(t *testing.T) {
	if !MealEligible(StatusPresent) {
		t.Error("present must be meal eligible")
	}
	for _, s := range []StatusKind{
		StatusOnDuty, StatusAfterDuty, StatusDayOff,
		StatusLeave, StatusDetached, StatusSickLeave, StatusUnspecified,
	} {
		if MealEligible(s) {
			t.Errorf("%q must not be meal eligible under the strict policy", s)
		}
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-05-01")
	if err != nil {
		t.Fatalf("ParseDay failed: %v", err)
	}
	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("expected %v, got %v", want, d)
	}

	if _, err := ParseDay("01.05.2024"); err == nil {
		t.Error("expected error for legacy day format")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 5, 1, 0, 1, 0, 0, time.Local)
	if !SameDay(a, b) {
		t.Error("times on the same calendar day should compare equal")
	}
	if SameDay(a, a.AddDate(0, 0, 1)) {
		t.Error("different days should not compare equal")
	}
}

func TestMemberFullIdentity(t *testing.T) {
	m := &Member{Rank: "Sergent clasa III", FirstName: "Ion", LastName: "Popescu"}
	if got := m.FullIdentity(); got != "SERGENT CLASA III ION POPESCU" {
		t.Errorf("unexpected identity: %q", got)
	}
}
