package contracts

import (
	"errors"
	"fmt"
)

// Error taxonomy for the analysis core. Per-symbol failures are caught
// at stage boundaries and recorded; they never abort the run for other
// symbols.
var (
	// ErrDataUnavailable: insufficient history or fundamentals. The
	// affected metric or symbol is skipped, never fabricated.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrOracleTransient: network/timeout on a sentiment call. The
	// article stays unprocessed and is retried on the next run.
	ErrOracleTransient = errors.New("sentiment oracle transient error")

	// ErrOracleMalformed: the oracle reply could not be parsed.
	// Permanent for that article; logged and excluded from aggregation.
	ErrOracleMalformed = errors.New("sentiment oracle malformed reply")

	// ErrInputInconsistent: non-positive price, EPS, or book value.
	// The ratio is marked unavailable instead of raising.
	ErrInputInconsistent = errors.New("inconsistent input")
)

// DataUnavailableError wraps ErrDataUnavailable with what was missing
func DataUnavailableError(symbol, what string) error {
	return fmt.Errorf("%s: %s: %w", symbol, what, ErrDataUnavailable)
}

// IsTransient reports whether err is retry-eligible on a later run
func IsTransient(err error) bool {
	return errors.Is(err, ErrOracleTransient)
}

// IsPermanentOracleFailure reports whether the article should be marked
// processed-with-failure so it is not retried indefinitely
func IsPermanentOracleFailure(err error) bool {
	return errors.Is(err, ErrOracleMalformed)
}
