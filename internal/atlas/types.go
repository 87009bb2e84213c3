package atlas

// Item is a rectangle submitted for packing. ID is opaque to the engine and
// is copied verbatim onto the resulting Placement.
type Item struct {
	ID     string
	Width  int
	Height int
}

// Placement records where an item landed on its page. W and H are always the
// source item's unpadded dimensions.
type Placement struct {
	ItemID string
	X      int
	Y      int
	W      int
	H      int
}

// Page is one square atlas page. Items are kept in placement order.
type Page struct {
	Index      int
	Items      []Placement
	Efficiency float64
}

// Config controls a single packing call.
type Config struct {
	// PageSize is both the width and the height of every page.
	PageSize int
	// Padding is reserved to the right of and below every placed item.
	Padding int
	// Strict fails the whole call on the first item with a non-positive
	// dimension instead of reporting it in Result.Excluded.
	Strict bool
}

// Result is the outcome of a packing call. Every input item is accounted for
// exactly once, either in one of the pages or in Excluded.
type Result struct {
	Pages    []Page
	Excluded []*ItemError
}

// Packer describes the behaviour required from an atlas packer.
type Packer interface {
	Pack(items []Item, cfg Config) (Result, error)
}
