package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr error
	}{
		{"12.34", 1234, nil},
		{"12,34", 1234, nil},
		{"90", 9000, nil},
		{"0.01", 1, nil},
		{"0.5", 50, nil},
		{".75", 75, nil},
		{"12.345", 1235, nil}, // half-up on the third decimal
		{"12.344", 1234, nil},
		{" 7.00 ", 700, nil},
		{"", 0, ErrNonPositiveAmount},
		{"0", 0, ErrNonPositiveAmount},
		{"0.00", 0, ErrNonPositiveAmount},
		{"-5", 0, ErrNonPositiveAmount},
		{"+5", 0, ErrNonPositiveAmount},
		{"abc", 0, ErrNonPositiveAmount},
		{"1.2.3", 0, ErrNonPositiveAmount},
		{"12e3", 0, ErrNonPositiveAmount},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{3000, "30.00"},
		{1, "0.01"},
		{99, "0.99"},
		{100, "1.00"},
		{1234, "12.34"},
		{-250, "-2.50"},
	}

	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Fatalf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("positive amount should validate, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); !errors.Is(err, ErrNonPositiveAmount) {
		t.Fatalf("zero amount error = %v, want ErrNonPositiveAmount", err)
	}
	if err := (Money{Cents: -1}).Validate(); !errors.Is(err, ErrNonPositiveAmount) {
		t.Fatalf("negative amount error = %v, want ErrNonPositiveAmount", err)
	}
}
