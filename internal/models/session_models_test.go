package models

import "testing"

func TestIsValidSessionStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "completed", "cancelled"} {
		if !IsValidSessionStatus(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []string{"", "done", "no-show", "Confirmed"} {
		if IsValidSessionStatus(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestCanTransitionSessionStatus(t *testing.T) {
	allowed := [][2]SessionStatus{
		{SessionStatusPending, SessionStatusConfirmed},
		{SessionStatusPending, SessionStatusCancelled},
		{SessionStatusConfirmed, SessionStatusCompleted},
		{SessionStatusConfirmed, SessionStatusCancelled},
		{SessionStatusConfirmed, SessionStatusConfirmed},
	}
	for _, tc := range allowed {
		if !CanTransitionSessionStatus(tc[0], tc[1]) {
			t.Errorf("%s -> %s should be allowed", tc[0], tc[1])
		}
	}
	denied := [][2]SessionStatus{
		{SessionStatusCompleted, SessionStatusPending},
		{SessionStatusCompleted, SessionStatusCancelled},
		{SessionStatusCancelled, SessionStatusConfirmed},
		{SessionStatusConfirmed, SessionStatusPending},
	}
	for _, tc := range denied {
		if CanTransitionSessionStatus(tc[0], tc[1]) {
			t.Errorf("%s -> %s should be denied", tc[0], tc[1])
		}
	}
}

func TestPackageTypeForDuration(t *testing.T) {
	if PackageTypeForDuration(30) != PackageType30Min {
		t.Error("30 minutes should map to 30MIN")
	}
	if PackageTypeForDuration(60) != PackageType60Min {
		t.Error("60 minutes should map to 60MIN")
	}
	// Anything that is not 30 falls through to the hour label.
	if PackageTypeForDuration(45) != PackageType60Min {
		t.Error("non-30 durations map to 60MIN")
	}
}
