package mines

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidShape      = errors.New("shape must be a non-empty rectangle of 0 and 1")
	ErrNegativeMineCount = errors.New("mine count must not be negative")
	ErrGameOver          = errors.New("game is over")
)

// InvalidPositionError is returned for coordinates that are out of bounds or
// outside the playable shape.
type InvalidPositionError struct {
	Row, Col int
}

// [InvalidPositionError] implements [error]
func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid position %d:%d", e.Row, e.Col)
}
