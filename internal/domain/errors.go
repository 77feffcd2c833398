package domain

import "errors"

// Sentinel errors shared across the pipeline. Wrap with fmt.Errorf("%w")
// and test with errors.Is.
var (
	// ErrInvalidAddress means the delivery address failed structural
	// validation. Raised before any store or network work begins.
	ErrInvalidAddress = errors.New("invalid delivery address")

	// ErrFetchFailed means the feed endpoint was unreachable or returned a
	// non-200 status. The run ends as a logged no-op, never a crash.
	ErrFetchFailed = errors.New("feed fetch failed")

	// ErrInvalidWindow and ErrInvalidCategory mark structurally invalid
	// report parameters, a programmer error rather than bad data.
	ErrInvalidWindow   = errors.New("invalid report window")
	ErrInvalidCategory = errors.New("invalid report category")
)
