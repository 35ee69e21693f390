package jalali

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestPeriodOf(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want Period
	}{
		// Новруз 1403 — 20 марта 2024
		{name: "nowruz", t: date(2024, time.March, 20), want: Period{Year: 1403, Month: 1}},
		{name: "mid farvardin", t: date(2024, time.April, 10), want: Period{Year: 1403, Month: 1}},
		{name: "first of ordibehesht", t: date(2024, time.April, 20), want: Period{Year: 1403, Month: 2}},
		{name: "esfand", t: date(2024, time.February, 25), want: Period{Year: 1402, Month: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeriodOf(tt.t); got != tt.want {
				t.Fatalf("PeriodOf = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPeriodKey(t *testing.T) {
	p := Period{Year: 1403, Month: 2}
	if got := p.Key(); got != "1403-02" {
		t.Fatalf("Key = %q, want %q", got, "1403-02")
	}

	p = Period{Year: 1402, Month: 12}
	if got := p.Key(); got != "1402-12" {
		t.Fatalf("Key = %q, want %q", got, "1402-12")
	}
}

func TestPreviousOf(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want Period
	}{
		{name: "mid month", t: date(2024, time.April, 25), want: Period{Year: 1403, Month: 1}},
		// год переключается при переходе через Новруз
		{name: "year wrap", t: date(2024, time.March, 25), want: Period{Year: 1402, Month: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PreviousOf(tt.t); got != tt.want {
				t.Fatalf("PreviousOf = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDayOfMonth(t *testing.T) {
	if got := DayOfMonth(date(2024, time.March, 20)); got != 1 {
		t.Fatalf("DayOfMonth = %d, want 1", got)
	}
	if got := DayOfMonth(date(2024, time.April, 20)); got != 1 {
		t.Fatalf("DayOfMonth = %d, want 1", got)
	}
	if got := DayOfMonth(date(2024, time.April, 10)); got != 22 {
		t.Fatalf("DayOfMonth = %d, want 22", got)
	}
}
