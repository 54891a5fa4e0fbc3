package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPricingConfigToOptions(t *testing.T) {
	opts := PricingConfig{
		FreeShippingThreshold: "1500",
		FlatShippingFee:       "49.5",
		TaxRate:               "0.05",
	}.ToOptions()

	if !opts.FreeShippingThreshold.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("unexpected threshold: %s", opts.FreeShippingThreshold)
	}
	if !opts.FlatShippingFee.Equal(decimal.RequireFromString("49.5")) {
		t.Fatalf("unexpected fee: %s", opts.FlatShippingFee)
	}
	if !opts.TaxRate.Equal(decimal.RequireFromString("0.05")) {
		t.Fatalf("unexpected tax rate: %s", opts.TaxRate)
	}
}

func TestPricingConfigFallsBackOnInvalidValues(t *testing.T) {
	opts := PricingConfig{
		FreeShippingThreshold: "abc",
		FlatShippingFee:       "-1",
	}.ToOptions()

	if !opts.FreeShippingThreshold.Equal(decimal.NewFromInt(999)) {
		t.Fatalf("expected default threshold, got %s", opts.FreeShippingThreshold)
	}
	if !opts.FlatShippingFee.Equal(decimal.NewFromInt(99)) {
		t.Fatalf("expected default fee, got %s", opts.FlatShippingFee)
	}
	if !opts.TaxRate.Equal(decimal.RequireFromString("0.18")) {
		t.Fatalf("expected default tax rate, got %s", opts.TaxRate)
	}
}
