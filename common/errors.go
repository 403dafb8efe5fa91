package common

import "errors"

var (
	// ErrTypeMismatch reports an operator or relation applied to
	// incompatible value kinds.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUndefinedVariable reports an expression referencing a name absent
	// from the merged environment.
	ErrUndefinedVariable = errors.New("undefined variable")
	// ErrAggregateDomain reports an aggregate finalized with zero
	// contributing rows, or a percentile outside [0, 1].
	ErrAggregateDomain = errors.New("aggregate domain error")
	// ErrPlanNotSupported reports a lowering step that cannot produce a
	// valid physical node.
	ErrPlanNotSupported = errors.New("plan not supported")
)
