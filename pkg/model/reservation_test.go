package model

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input  string
		want   Status
		wantOK bool
	}{
		{"CONFIRMED", StatusConfirmed, true},
		{"confirmed", StatusConfirmed, true},
		{"  Cancelled ", StatusCancelled, true},
		{"completed", StatusCompleted, true},
		{"COMPLETED", StatusCompleted, true},
		{"pending", "", false},
		{"", "", false},
		{"CONFIRMED!", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseStatus(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseStatus(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if StatusConfirmed.IsTerminal() {
		t.Error("CONFIRMED must not be terminal")
	}
	if !StatusCancelled.IsTerminal() {
		t.Error("CANCELLED must be terminal")
	}
	if !StatusCompleted.IsTerminal() {
		t.Error("COMPLETED must be terminal")
	}
}

func TestDeriveViewStatus(t *testing.T) {
	today := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	day := func(d int) time.Time {
		return time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name   string
		status Status
		start  time.Time
		end    time.Time
		want   ViewStatus
	}{
		{"cancelled wins over dates", StatusCancelled, day(10), day(20), ViewCancelled},
		{"completed wins over dates", StatusCompleted, day(16), day(20), ViewCompleted},
		{"confirmed future", StatusConfirmed, day(16), day(20), ViewUpcoming},
		{"confirmed spanning today", StatusConfirmed, day(10), day(20), ViewActive},
		{"confirmed starts today", StatusConfirmed, day(15), day(20), ViewActive},
		{"confirmed ends today", StatusConfirmed, day(10), day(15), ViewActive},
		{"confirmed past reads completed", StatusConfirmed, day(1), day(14), ViewCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveViewStatus(tt.status, tt.start, tt.end, today)
			if got != tt.want {
				t.Errorf("DeriveViewStatus(%s, %s, %s) = %s, want %s",
					tt.status, tt.start.Format(time.DateOnly), tt.end.Format(time.DateOnly), got, tt.want)
			}
		})
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 6, 15, 18, 45, 12, 999, time.FixedZone("UTC+5", 5*3600))
	got := DateOnly(in)
	want := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	if !got.Equal(want) {
		t.Errorf("DateOnly(%v) = %v, want %v", in, got, want)
	}
}

func TestWindowDays(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"multi day", day(10), day(13), 3},
		{"one day apart", day(10), day(11), 1},
		{"same day bills one day", day(10), day(10), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WindowDays(tt.start, tt.end); got != tt.want {
				t.Errorf("WindowDays = %d, want %d", got, tt.want)
			}
		})
	}
}
