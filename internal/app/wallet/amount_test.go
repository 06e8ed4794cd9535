package wallet

import (
	"errors"
	"testing"

	"casino-wallet/internal/ledger"

	"github.com/shopspring/decimal"
)

func TestToMinor(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "12.50", want: 1250},
		{in: "12.5", want: 1250},
		{in: "0", want: 0},
		{in: "1000", want: 100000},
		{in: "-3.01", want: -301},
		{in: "0.001", wantErr: true},
		{in: "92233720368547758.08", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ToMinor(decimal.RequireFromString(tt.in))
		if tt.wantErr {
			if !errors.Is(err, ledger.ErrInvalidAmount) {
				t.Fatalf("ToMinor(%s) error = %v, want ErrInvalidAmount", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ToMinor(%s) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestPositiveMinorRejectsZero(t *testing.T) {
	if _, err := positiveMinor(decimal.Zero); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("positiveMinor(0) error = %v", err)
	}
}

func TestFormatMinor(t *testing.T) {
	tests := map[int64]string{0: "0.00", 5: "0.05", 1250: "12.50", 100000: "1000.00", -301: "-3.01"}
	for in, want := range tests {
		if got := FormatMinor(in); got != want {
			t.Fatalf("FormatMinor(%d) = %q, want %q", in, got, want)
		}
	}
}
