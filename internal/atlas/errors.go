package atlas

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when the page size is not positive or the padding is negative.
	ErrInvalidConfig = errors.New("page size must be positive and padding non-negative")
	// ErrInvalidItem marks an item with a non-positive width or height.
	ErrInvalidItem = errors.New("item width and height must be positive")
	// ErrItemTooLarge marks an item whose padded footprint exceeds the page in either dimension.
	ErrItemTooLarge = errors.New("item does not fit on a page")
)

// ItemError reports why a single item was left out of the result.
type ItemError struct {
	// Index is the item's position in the caller's slice.
	Index  int
	ItemID string
	Width  int
	Height int
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d (%q, %dx%d): %v", e.Index, e.ItemID, e.Width, e.Height, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
