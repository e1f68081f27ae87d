package element

import "errors"

var (
	ErrElementNotFound = errors.New("element not found")
	ErrEmptyGUID       = errors.New("element guid is empty")
	ErrFractionSum     = errors.New("layer fractions do not sum to 1")
	ErrNegativeVolume  = errors.New("layer volume is negative")
)
