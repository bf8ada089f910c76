package perplexity

import "errors"

// Input errors. They are deterministic in the input and never worth retrying.
var (
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrIndexOutOfRange  = errors.New("target id out of range")
	ErrDivisionByZero   = errors.New("no non-pad tokens in batch")
	ErrUnsupportedDType = errors.New("unsupported dtype")
)
