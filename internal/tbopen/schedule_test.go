package tbopen

import (
	"testing"
	"time"
)

func TestChooseDiscountRateTable(t *testing.T) {
	cases := []struct {
		at   string
		want float64
	}{
		{"2022-11-04 03:09:59", 0.011}, // 首条规则生效前走默认
		{"2022-11-04 03:10:00", 0.04},  // 生效时刻含等于
		{"2023-09-12 04:00:00", 0.02},
		{"2024-03-25 00:00:00", 0.01},
		{"2024-04-11 17:10:00", 0.00},
		{"2024-04-15 05:50:00", 0.02},
		{"2024-04-23 14:30:00", 0.07},
		{"2024-04-29 12:00:00", 0.06},
		{"2025-09-24 00:00:00", 0.05},
		{"2030-01-01 00:00:00", 0.05}, // 表头规则对后续时间持续生效
	}
	for _, tc := range cases {
		at, err := time.ParseInLocation(timeLayout, tc.at, time.Local)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.at, err)
		}
		if got := ChooseDiscountRate(at); got != tc.want {
			t.Errorf("ChooseDiscountRate(%s) = %v, want %v", tc.at, got, tc.want)
		}
	}
}

func TestChooseDiscountRateZeroTime(t *testing.T) {
	if got, want := ChooseDiscountRate(time.Time{}), ChooseDiscountRate(time.Now()); got != want {
		t.Fatalf("zero time should fall back to now: got %v, want %v", got, want)
	}
}
