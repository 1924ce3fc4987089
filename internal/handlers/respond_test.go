package handlers

import (
	"testing"
	"time"
)

// TestClockToday проверяет смену даты по часовому поясу пользователя.
func TestClockToday(t *testing.T) {
	now := func() time.Time {
		return time.Date(2026, time.January, 10, 23, 30, 0, 0, time.UTC)
	}

	west := Clock{Location: time.FixedZone("UTC-5", -5*60*60), Now: now}
	if got := west.Today().Format(dateLayout); got != "2026-01-10" {
		t.Fatalf("expected 2026-01-10, got %s", got)
	}

	east := Clock{Location: time.FixedZone("UTC+3", 3*60*60), Now: now}
	if got := east.Today().Format(dateLayout); got != "2026-01-11" {
		t.Fatalf("expected 2026-01-11, got %s", got)
	}
}

// TestClockParseDate проверяет оба формата даты и отбрасывание времени.
func TestClockParseDate(t *testing.T) {
	clock := NewClock(time.UTC)

	date, err := clock.parseDate("2026-01-10")
	if err != nil || date.Format(dateLayout) != "2026-01-10" {
		t.Fatalf("unexpected date: %v %v", date, err)
	}

	date, err = clock.parseDate("2026-01-10T23:30:00Z")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if date.Hour() != 0 || date.Format(dateLayout) != "2026-01-10" {
		t.Fatalf("expected midnight of 2026-01-10, got %v", date)
	}

	if _, err := clock.parseDate("10/01/2026"); err == nil {
		t.Fatal("expected error for invalid date")
	}
}

// TestMoney проверяет перевод центов в доллары.
func TestMoney(t *testing.T) {
	if got := money(12345); got != 123.45 {
		t.Fatalf("expected 123.45, got %v", got)
	}
	if got := money(-5); got != -0.05 {
		t.Fatalf("expected -0.05, got %v", got)
	}
	if formatDatePtr(nil) != nil {
		t.Fatal("expected nil date")
	}
}
