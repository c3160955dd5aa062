package service

import (
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "07:30", want: "0 30 7 * * *"},
		{in: "00:00", want: "0 0 0 * * *"},
		{in: "23:59", want: "0 59 23 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "-1:30", wantErr: true},
		{in: "12", wantErr: true},
		{in: "a:b", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := buildDailySpec(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("buildDailySpec(%q) = %q, want error", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("buildDailySpec(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("buildDailySpec(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestScheduleDaily(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	if _, err := s.ScheduleDaily("06:15", func() {}); err != nil {
		t.Errorf("ScheduleDaily(06:15): %v", err)
	}
	if _, err := s.ScheduleDaily("25:00", func() {}); err == nil {
		t.Error("ScheduleDaily(25:00) should fail")
	}
}

func TestScheduleInterval(t *testing.T) {
	s := NewSchedulerService(time.UTC)

	if _, err := s.ScheduleInterval(time.Hour, func() {}); err != nil {
		t.Errorf("ScheduleInterval(1h): %v", err)
	}
	for _, interval := range []time.Duration{0, -time.Minute} {
		if _, err := s.ScheduleInterval(interval, func() {}); err == nil {
			t.Errorf("ScheduleInterval(%v) should fail", interval)
		}
	}
}
