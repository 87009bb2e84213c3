package atlas

import (
	"cmp"
	"fmt"
	"slices"
)

// prepared is an item that passed validation, tagged with its input position.
type prepared struct {
	Item
	index int
}

// Validate reports whether the config can produce any layout at all.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: page size %d", ErrInvalidConfig, c.PageSize)
	}
	if c.Padding < 0 {
		return fmt.Errorf("%w: padding %d", ErrInvalidConfig, c.Padding)
	}
	return nil
}

// prepare validates items and returns the placeable ones in packing order,
// along with per-item diagnostics for everything it dropped.
func prepare(items []Item, cfg Config) ([]prepared, []*ItemError, error) {
	// Compared against the remaining room rather than summed with padding so
	// that huge widths or paddings cannot wrap around.
	room := cfg.PageSize - cfg.Padding
	out := make([]prepared, 0, len(items))
	var excluded []*ItemError

	for i, item := range items {
		var reason error
		switch {
		case item.Width <= 0 || item.Height <= 0:
			reason = ErrInvalidItem
		case item.Width > room || item.Height > room:
			reason = ErrItemTooLarge
		}
		if reason == nil {
			out = append(out, prepared{Item: item, index: i})
			continue
		}

		itemErr := &ItemError{
			Index:  i,
			ItemID: item.ID,
			Width:  item.Width,
			Height: item.Height,
			Err:    reason,
		}
		if cfg.Strict && reason == ErrInvalidItem {
			return nil, nil, itemErr
		}
		excluded = append(excluded, itemErr)
	}

	slices.SortStableFunc(out, comparePacking)
	return out, excluded, nil
}

// comparePacking orders tallest first, then widest, then by input position.
func comparePacking(a, b prepared) int {
	if c := cmp.Compare(b.Height, a.Height); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Width, a.Width); c != 0 {
		return c
	}
	return cmp.Compare(a.index, b.index)
}
