package material

import "errors"

var (
	ErrMaterialNotFound  = errors.New("material not found")
	ErrAlreadyMatched    = errors.New("material already has an active match")
	ErrPartialBulkUpdate = errors.New("bulk update touched fewer materials than requested")
	ErrScoreOutOfRange   = errors.New("match score must be between 0 and 1")
)
