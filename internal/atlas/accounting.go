package atlas

// Efficiency returns the percentage of a pageSize x pageSize page covered by
// the unpadded rectangles of items.
func Efficiency(items []Placement, pageSize int) float64 {
	if pageSize <= 0 {
		return 0
	}
	total := int64(pageSize) * int64(pageSize)
	return 100 * float64(usedArea(items)) / float64(total)
}

// UsedArea sums the unpadded area of every item on the page.
func (p Page) UsedArea() int64 {
	return usedArea(p.Items)
}

func usedArea(items []Placement) int64 {
	var used int64
	for _, item := range items {
		used += int64(item.W) * int64(item.H)
	}
	return used
}
