package worker

import (
	"testing"
	"time"
)

func TestResolveWindowExplicit(t *testing.T) {
	start, end := resolveWindow("2026-08-01 10:00:00", "2026-08-01 11:00:00", 0)

	wantStart := time.Date(2026, 8, 1, 10, 0, 0, 0, time.Local)
	wantEnd := time.Date(2026, 8, 1, 11, 0, 0, 0, time.Local)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

func TestResolveWindowLookbackDefault(t *testing.T) {
	start, end := resolveWindow("", "2026-08-01 11:00:00", 0)

	if got := end.Sub(start); got != defaultLookback {
		t.Errorf("window = %v, want %v", got, defaultLookback)
	}
}

func TestResolveWindowCustomLookback(t *testing.T) {
	start, end := resolveWindow("", "2026-08-01 11:00:00", 90)

	if got := end.Sub(start); got != 90*time.Minute {
		t.Errorf("window = %v, want 90m", got)
	}
}

func TestResolveWindowGarbageFallsBackToNow(t *testing.T) {
	before := time.Now()
	start, end := resolveWindow("not-a-time", "also-not", 0)
	after := time.Now()

	if end.Before(before) || end.After(after) {
		t.Errorf("end = %v, 解析失败应取当前时间", end)
	}
	if got := end.Sub(start); got != defaultLookback {
		t.Errorf("window = %v, want %v", got, defaultLookback)
	}
}
