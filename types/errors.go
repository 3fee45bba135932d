package types

import "errors"

// Error kinds returned by the contact kernel. All of them are recoverable by
// rejecting the current time step; wrapped errors carry the pair and location.
var (
	ErrBadInput                = errors.New("bad input")
	ErrStepTooLarge            = errors.New("step too large")
	ErrRotationTooLarge        = errors.New("rotation too large")
	ErrFirstStepActivation     = errors.New("contact active in the first step of a pair")
	ErrUnconvergedCPP          = errors.New("closest point projection not converged")
	ErrUnconvergedPTL          = errors.New("point to line projection not converged")
	ErrNeighborHandoverMissing = errors.New("neighbor normal not available")
	ErrTangentZero             = errors.New("tangent of zero length")
	ErrSegmentLimitExceeded    = errors.New("segment limit exceeded")
)
