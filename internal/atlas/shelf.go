package atlas

// shelfPacker fills pages left-to-right along horizontal shelves, opening a
// new shelf below when the current one is full and a new page when the
// current page has no vertical room left.
type shelfPacker struct{}

// New creates a Packer based on tallest-first shelf packing.
func New() Packer {
	return &shelfPacker{}
}

// Pack places items on as many square pages as needed. It is a convenience
// wrapper around New().Pack for callers that only need size and padding.
func Pack(items []Item, pageSize, padding int) (Result, error) {
	return New().Pack(items, Config{PageSize: pageSize, Padding: padding})
}

func (p *shelfPacker) Pack(items []Item, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	queue, excluded, err := prepare(items, cfg)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Pages:    []Page{},
		Excluded: excluded,
	}
	if len(queue) == 0 {
		return result, nil
	}

	cursor := newPageCursor(cfg)
	for _, item := range queue {
		if !cursor.place(item.Item) {
			result.Pages = append(result.Pages, cursor.finalize())
			cursor.reset(len(result.Pages))
			// Every queued item fits an empty page; prepare guarantees it.
			cursor.place(item.Item)
		}
	}
	result.Pages = append(result.Pages, cursor.finalize())

	return result, nil
}

// pageCursor holds the shelf state of the page currently being filled.
type pageCursor struct {
	size    int
	padding int

	index       int
	items       []Placement
	shelfY      int
	shelfHeight int
	cursorX     int
}

func newPageCursor(cfg Config) *pageCursor {
	return &pageCursor{
		size:    cfg.PageSize,
		padding: cfg.Padding,
	}
}

// place puts item on the current shelf or on a new shelf below it. It
// returns false without touching any state when the page has no room.
func (c *pageCursor) place(item Item) bool {
	w := item.Width + c.padding
	h := item.Height + c.padding

	if c.cursorX+w <= c.size && (h <= c.shelfHeight || c.shelfY+h <= c.size) {
		c.put(item, c.cursorX, c.shelfY)
		c.cursorX += w
		c.shelfHeight = max(c.shelfHeight, h)
		return true
	}

	nextY := c.shelfY + c.shelfHeight
	if nextY+h <= c.size && w <= c.size {
		c.shelfY = nextY
		c.shelfHeight = h
		c.cursorX = w
		c.put(item, 0, nextY)
		return true
	}

	return false
}

func (c *pageCursor) put(item Item, x, y int) {
	c.items = append(c.items, Placement{
		ItemID: item.ID,
		X:      x,
		Y:      y,
		W:      item.Width,
		H:      item.Height,
	})
}

// finalize closes the current page and computes its efficiency.
func (c *pageCursor) finalize() Page {
	return Page{
		Index:      c.index,
		Items:      c.items,
		Efficiency: Efficiency(c.items, c.size),
	}
}

// reset moves the cursor to the origin of a fresh page with the given index.
func (c *pageCursor) reset(index int) {
	c.index = index
	c.items = nil
	c.shelfY = 0
	c.shelfHeight = 0
	c.cursorX = 0
}
