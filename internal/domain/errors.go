package domain

import "errors"

var (
	// ErrMalformedInput marks a day file that cannot be processed: a missing
	// column, a non-numeric value, an unparsable time or out-of-order rows.
	ErrMalformedInput = errors.New("malformed input")

	// ErrDegenerateCalibration is returned when no coefficient can be fitted,
	// typically because every ideal power value is zero.
	ErrDegenerateCalibration = errors.New("degenerate calibration")

	// ErrConfigMissing marks an absent, unparsable or invalid site or
	// calibration document.
	ErrConfigMissing = errors.New("config missing")
)
