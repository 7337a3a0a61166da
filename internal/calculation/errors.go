package calculation

import "errors"

var (
	// ErrInputMissing reports a required market data resource that does not exist.
	ErrInputMissing = errors.New("input missing")
	// ErrInputInvalid reports input that loads but cannot drive a simulation:
	// no usable return values, or too little overlapping history.
	ErrInputInvalid = errors.New("input invalid")
)
