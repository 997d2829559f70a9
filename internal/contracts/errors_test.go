package contracts

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMissingPriceError(t *testing.T) {
	err := &MissingPriceError{
		Symbol: "RELIANCE",
		Date:   time.Date(2019, time.February, 28, 0, 0, 0, 0, time.UTC),
	}

	want := "no closing price for RELIANCE on anchor date 2019-02-28"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := fmt.Errorf("period 2019-02: %w", err)
	var target *MissingPriceError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find MissingPriceError through wrapping")
	}
	if target.Symbol != "RELIANCE" {
		t.Errorf("unwrapped symbol = %q, want RELIANCE", target.Symbol)
	}
}

func TestDataSourceError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &DataSourceError{Op: "month ends", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}

	want := "data source: month ends: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
