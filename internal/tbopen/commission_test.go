package tbopen

import (
	"testing"
	"time"
)

func commissionAt(t *testing.T, raw string) time.Time {
	t.Helper()
	at, err := time.ParseInLocation(timeLayout, raw, time.Local)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return at
}

func TestCalculateCommissionBasic(t *testing.T) {
	// 2024-04-29 起折扣 0.06，shareFee = 100 * (0.9 - 0.06)
	result := CalculateCommission("100.00", "88.00", commissionAt(t, "2024-04-29 12:00:00"))

	if got := result.ShareFee.String(); got != "84.00" {
		t.Errorf("share fee = %s, want 84.00", got)
	}
	if got := result.GrossCommission.String(); got != "100.00" {
		t.Errorf("gross commission = %s, want 100.00", got)
	}
	if result.OrderDiscount != 0.06 {
		t.Errorf("order discount = %v, want 0.06", result.OrderDiscount)
	}
}

func TestCalculateCommissionFallbackPreFee(t *testing.T) {
	// pub_share_fee 为 0 时回退预估佣金；当期折扣 0.00
	result := CalculateCommission("0", "10.00", commissionAt(t, "2024-04-11 17:10:00"))

	if got := result.ShareFee.String(); got != "9.00" {
		t.Errorf("share fee = %s, want 9.00", got)
	}
	if got := result.GrossCommission.String(); got != "10.00" {
		t.Errorf("gross commission = %s, want 10.00", got)
	}
}

func TestCalculateCommissionRoundHalfUp(t *testing.T) {
	// 1.23 * (0.9 - 0.05) = 1.0455，四舍五入到 1.05
	result := CalculateCommission("1.23", "", commissionAt(t, "2025-09-24 00:00:00"))

	if got := result.ShareFee.String(); got != "1.05" {
		t.Errorf("share fee = %s, want 1.05", got)
	}
}

func TestCalculateCommissionInvalidAmount(t *testing.T) {
	result := CalculateCommission("abc", "also-bad", commissionAt(t, "2024-04-29 12:00:00"))

	if got := result.ShareFee.String(); got != "0.00" {
		t.Errorf("share fee = %s, want 0.00", got)
	}
	if got := result.GrossCommission.String(); got != "0.00" {
		t.Errorf("gross commission = %s, want 0.00", got)
	}
}
