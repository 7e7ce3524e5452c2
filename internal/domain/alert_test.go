package domain

import "testing"

func TestAlertID(t *testing.T) {
	if got := AlertID("b1", AlertKindExceeded); got != "alert_b1_exceeded" {
		t.Errorf("Expected alert_b1_exceeded, got %s", got)
	}
	if got := AlertID("b1", AlertKindNearLimit); got != "alert_b1_nearlimit" {
		t.Errorf("Expected alert_b1_nearlimit, got %s", got)
	}
}

func TestAlertID_IsDeterministic(t *testing.T) {
	first := AlertID("budget-123", AlertKindExceeded)
	second := AlertID("budget-123", AlertKindExceeded)
	if first != second {
		t.Error("Same budget and kind must always produce the same id")
	}
}
