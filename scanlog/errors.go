package scanlog

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicate = errors.New("duplicate")
	ErrNotFound  = errors.New("not found")
	ErrInvalid   = errors.New("invalid")
	// ErrPartitionBusy is returned when the per-partition lock could not be
	// acquired within the retry budget.
	ErrPartitionBusy = errors.New("partition busy")
	// ErrBarcodeFormat marks a barcode rejected by the object's rule or
	// material date. It wraps ErrInvalid.
	ErrBarcodeFormat = fmt.Errorf("%w: barcode format", ErrInvalid)
)
