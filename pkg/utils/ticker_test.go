package utils

import (
	"testing"
	"time"
)

func TestToSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BBCA", "BBCA.JK"},
		{"bbca", "BBCA.JK"},
		{" GOTO ", "GOTO.JK"},
		{"BBCA.JK", "BBCA.JK"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToSymbol(tt.in); got != tt.want {
			t.Errorf("ToSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BBCA.JK", "BBCA"},
		{"BBCA", "BBCA"},
		{" TLKM.JK", "TLKM"},
	}
	for _, tt := range tests {
		if got := ToCode(tt.in); got != tt.want {
			t.Errorf("ToCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, code := range []string{"BBCA", "TLKM", "GOTO"} {
		if got := ToCode(ToSymbol(code)); got != code {
			t.Errorf("round trip %q -> %q", code, got)
		}
	}
}

func TestDateStamp(t *testing.T) {
	// 2024-03-01 23:30 UTC is already 2024-03-02 in Jakarta.
	ts := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	if got := DateStamp(ts); got != "2024-03-02" {
		t.Errorf("DateStamp = %q, want 2024-03-02", got)
	}
}

func TestUpdatedOnStamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 23, 30, 5, 0, time.UTC)
	if got := UpdatedOnStamp(ts); got != "2024-03-01 23:30:05" {
		t.Errorf("UpdatedOnStamp = %q", got)
	}
}
