package models

import "testing"

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		from AlertStatus
		op   TransitionOp
		want bool
	}{
		{AlertStatusActive, TransitionAcknowledge, true},
		{AlertStatusActive, TransitionResolve, true},
		{AlertStatusActive, TransitionDismiss, true},
		{AlertStatusAcknowledged, TransitionAcknowledge, false},
		{AlertStatusAcknowledged, TransitionResolve, true},
		{AlertStatusAcknowledged, TransitionDismiss, true},
		{AlertStatusResolved, TransitionAcknowledge, false},
		{AlertStatusResolved, TransitionResolve, false},
		{AlertStatusResolved, TransitionDismiss, false},
		{AlertStatusDismissed, TransitionAcknowledge, false},
		{AlertStatusDismissed, TransitionResolve, false},
		{AlertStatusDismissed, TransitionDismiss, false},
	}
	for _, tt := range tests {
		if got := ValidateTransition(tt.from, tt.op); got != tt.want {
			t.Errorf("ValidateTransition(%s, %s) = %v, want %v", tt.from, tt.op, got, tt.want)
		}
	}
}

func TestTargetStatus(t *testing.T) {
	if got := TransitionAcknowledge.TargetStatus(); got != AlertStatusAcknowledged {
		t.Errorf("acknowledge target = %q", got)
	}
	if got := TransitionResolve.TargetStatus(); got != AlertStatusResolved {
		t.Errorf("resolve target = %q", got)
	}
	if got := TransitionDismiss.TargetStatus(); got != AlertStatusDismissed {
		t.Errorf("dismiss target = %q", got)
	}
	if got := TransitionOp("bogus").TargetStatus(); got != "" {
		t.Errorf("unknown op target = %q, want empty", got)
	}
}
