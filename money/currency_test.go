package money

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestToCents(t *testing.T) {
	cases := []struct {
		dollars float64
		want    int64
	}{
		{0, 0},
		{10, 1000},
		{19.99, 1999},
		{25.00, 2500},
		{-3.75, -375},
		{0.01, 1},
	}
	for _, tc := range cases {
		got, err := ToCents(tc.dollars)
		if err != nil {
			t.Fatalf("ToCents(%v) returned error: %v", tc.dollars, err)
		}
		if got != tc.want {
			t.Errorf("ToCents(%v) = %d, want %d", tc.dollars, got, tc.want)
		}
	}

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := ToCents(bad); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ToCents(%v) should fail with ErrInvalidAmount, got %v", bad, err)
		}
	}
}

func TestToDollars(t *testing.T) {
	got, err := ToDollars(1999)
	if err != nil {
		t.Fatalf("ToDollars(1999) returned error: %v", err)
	}
	if got != 19.99 {
		t.Errorf("ToDollars(1999) = %v, want 19.99", got)
	}

	// Fractional cents round to the nearest whole cent first
	got, _ = ToDollars(1999.6)
	if got != 20.00 {
		t.Errorf("ToDollars(1999.6) = %v, want 20", got)
	}

	if _, err := ToDollars(math.NaN()); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("ToDollars(NaN) should fail with ErrInvalidAmount, got %v", err)
	}
}

func TestRoundTripMatchesRoundMoney(t *testing.T) {
	for _, d := range []float64{0, 0.01, 1.239, 19.99, 25.555, 100.004, -7.777, 1234.56} {
		cents, err := ToCents(d)
		if err != nil {
			t.Fatalf("ToCents(%v) returned error: %v", d, err)
		}
		back, err := ToDollars(float64(cents))
		if err != nil {
			t.Fatalf("ToDollars(%v) returned error: %v", cents, err)
		}
		if back != RoundMoney(d) {
			t.Errorf("ToDollars(ToCents(%v)) = %v, want RoundMoney = %v", d, back, RoundMoney(d))
		}
	}
}

func TestRoundMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.234, 1.23},
		{1.236, 1.24},
		{19.999, 20},
		{-2.555, -2.56},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}
	for _, tc := range cases {
		if got := RoundMoney(tc.in); got != tc.want {
			t.Errorf("RoundMoney(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCalculateProcessorFee(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{-5, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{30, 1.17},
		{100, 3.2},
	}
	for _, tc := range cases {
		if got := CalculateProcessorFee(tc.in); got != tc.want {
			t.Errorf("CalculateProcessorFee(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCalculatePaymentBreakdown(t *testing.T) {
	// Scenario: $25 job, 25% platform cut, $5 tip
	bd, err := CalculatePaymentBreakdown(25.00, 0.25, 5.00)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bd.GrossTotal != 30.00 {
		t.Errorf("GrossTotal = %v, want 30.00", bd.GrossTotal)
	}
	if bd.PlatformFee != 6.25 {
		t.Errorf("PlatformFee = %v, want 6.25", bd.PlatformFee)
	}
	if bd.WorkerAmount != 23.75 {
		t.Errorf("WorkerAmount = %v, want 23.75", bd.WorkerAmount)
	}
	if bd.ProcessorFee != 1.17 {
		t.Errorf("ProcessorFee = %v, want 1.17", bd.ProcessorFee)
	}
	if bd.PlatformFeeNet != 5.08 {
		t.Errorf("PlatformFeeNet = %v, want 5.08", bd.PlatformFeeNet)
	}
	if bd.TipAmount != 5.00 {
		t.Errorf("TipAmount = %v, want 5.00", bd.TipAmount)
	}
}

func TestCalculatePaymentBreakdownErrors(t *testing.T) {
	if _, err := CalculatePaymentBreakdown(-5, 0.25, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative total should fail with ErrInvalidAmount, got %v", err)
	}
	if _, err := CalculatePaymentBreakdown(0, 0.25, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero total should fail with ErrInvalidAmount, got %v", err)
	}
	if _, err := CalculatePaymentBreakdown(math.NaN(), 0.25, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("NaN total should fail with ErrInvalidAmount, got %v", err)
	}
	if _, err := CalculatePaymentBreakdown(100, 1.5, 0); !errors.Is(err, ErrInvalidFeePercent) {
		t.Errorf("fee percent above 1 should fail with ErrInvalidFeePercent, got %v", err)
	}
	if _, err := CalculatePaymentBreakdown(100, -0.1, 0); !errors.Is(err, ErrInvalidFeePercent) {
		t.Errorf("negative fee percent should fail with ErrInvalidFeePercent, got %v", err)
	}
}

func TestCalculatePaymentBreakdownCoercesBadTip(t *testing.T) {
	bd, err := CalculatePaymentBreakdown(25.00, 0.25, math.NaN())
	if err != nil {
		t.Fatalf("bad tip must not block the breakdown: %v", err)
	}
	if bd.TipAmount != 0 {
		t.Errorf("TipAmount = %v, want 0 for a NaN tip", bd.TipAmount)
	}
	if bd.GrossTotal != 25.00 {
		t.Errorf("GrossTotal = %v, want 25.00 with tip coerced to 0", bd.GrossTotal)
	}
}

func TestBreakdownConservesTotal(t *testing.T) {
	totals := []float64{1, 9.99, 25, 49.5, 87.03, 120}
	fees := []float64{0, 0.1, 0.15, 0.25, 0.5, 1}
	tips := []float64{0, 1.25, 5, 7.77}

	for _, total := range totals {
		for _, fee := range fees {
			for _, tip := range tips {
				bd, err := CalculatePaymentBreakdown(total, fee, tip)
				if err != nil {
					t.Fatalf("CalculatePaymentBreakdown(%v, %v, %v): %v", total, fee, tip, err)
				}
				// Platform fee plus worker amount (minus the tip that passed
				// through) must reconstruct the total to the cent.
				if got := bd.PlatformFee + bd.WorkerAmount - bd.TipAmount; !almostEqual(got, RoundMoney(total)) {
					t.Errorf("split of (%v, %v, %v) does not conserve total: %v", total, fee, tip, got)
				}
			}
		}
	}
}

func TestValidateAmount(t *testing.T) {
	got, err := ValidateAmount("12.50", "tip_amount")
	if err != nil || got != 12.5 {
		t.Errorf(`ValidateAmount("12.50") = %v, %v; want 12.5, nil`, got, err)
	}
	got, err = ValidateAmount(7, "total_price")
	if err != nil || got != 7 {
		t.Errorf("ValidateAmount(7) = %v, %v; want 7, nil", got, err)
	}
	// Not rounded
	got, err = ValidateAmount(3.14159, "total_price")
	if err != nil || got != 3.14159 {
		t.Errorf("ValidateAmount(3.14159) = %v, %v; want the unrounded value", got, err)
	}

	for name, bad := range map[string]any{
		"unparsable string": "abc",
		"negative":          -1.0,
		"nil":               nil,
		"bool":              true,
		"nan string":        "NaN",
	} {
		if _, err := ValidateAmount(bad, "amount"); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ValidateAmount(%s) should fail with ErrInvalidAmount, got %v", name, err)
		}
	}
}
