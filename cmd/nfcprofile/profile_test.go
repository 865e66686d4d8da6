package main

import (
	"testing"
)

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"ring_mode=ring_vibrate", " screen_timeout = 30", "vibrator_1=unchanged"})
	if err != nil {
		t.Fatalf("parseAssignments() error = %v", err)
	}

	want := []assignment{
		{Key: "ring_mode", Value: "ring_vibrate"},
		{Key: "screen_timeout", Value: "30"},
		{Key: "vibrator_1", Value: "unchanged"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d assignments, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("assignment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseAssignments_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing equals", []string{"ring_mode"}},
		{"unknown setting", []string{"volume=3"}},
		{"bad value", []string{"airplane_mode=maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseAssignments(tt.args); err == nil {
				t.Errorf("parseAssignments(%v) succeeded, want error", tt.args)
			}
		})
	}
}
