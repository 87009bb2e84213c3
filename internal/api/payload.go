package api

import (
	"errors"
	"time"

	"github.com/eugenenazirov/atlas-packer/internal/atlas"
	"github.com/eugenenazirov/atlas-packer/internal/storage"
)

type itemRequest struct {
	ID     string `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type packRequest struct {
	Items    []itemRequest `json:"items"`
	PageSize *int          `json:"pageSize,omitempty"`
	Padding  *int          `json:"padding,omitempty"`
	Strict   bool          `json:"strict,omitempty"`
}

type batchRequest struct {
	Jobs []packRequest `json:"jobs"`
}

type placementResponse struct {
	ItemID string `json:"itemId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	W      int    `json:"w"`
	H      int    `json:"h"`
}

type pageResponse struct {
	PageIndex  int                 `json:"pageIndex"`
	Items      []placementResponse `json:"items"`
	Efficiency float64             `json:"efficiency"`
}

type excludedResponse struct {
	Index  int    `json:"index"`
	ItemID string `json:"itemId"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type packResponse struct {
	PageSize          int                `json:"pageSize"`
	Padding           int                `json:"padding"`
	Pages             []pageResponse     `json:"pages"`
	Excluded          []excludedResponse `json:"excluded"`
	TotalPages        int                `json:"totalPages"`
	PackedItems       int                `json:"packedItems"`
	ExcludedItems     int                `json:"excludedItems"`
	MeanEfficiency    float64            `json:"meanEfficiency"`
	CalculationTimeMs int64              `json:"calculationTimeMs"`
}

type batchResponse struct {
	Results           []packResponse `json:"results"`
	CalculationTimeMs int64          `json:"calculationTimeMs"`
}

type settingsResponse struct {
	storage.Settings
	UpdatedAt time.Time `json:"updatedAt"`
	Message   string    `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// newPackResponse converts an engine result and derives the aggregate
// statistics the engine itself does not keep.
func newPackResponse(result atlas.Result, cfg atlas.Config, elapsed time.Duration) packResponse {
	resp := packResponse{
		PageSize:          cfg.PageSize,
		Padding:           cfg.Padding,
		Pages:             make([]pageResponse, 0, len(result.Pages)),
		Excluded:          make([]excludedResponse, 0, len(result.Excluded)),
		TotalPages:        len(result.Pages),
		ExcludedItems:     len(result.Excluded),
		CalculationTimeMs: elapsed.Milliseconds(),
	}

	var efficiencySum float64
	for _, page := range result.Pages {
		items := make([]placementResponse, len(page.Items))
		for i, p := range page.Items {
			items[i] = placementResponse{ItemID: p.ItemID, X: p.X, Y: p.Y, W: p.W, H: p.H}
		}
		resp.Pages = append(resp.Pages, pageResponse{
			PageIndex:  page.Index,
			Items:      items,
			Efficiency: page.Efficiency,
		})
		resp.PackedItems += len(page.Items)
		efficiencySum += page.Efficiency
	}
	if len(result.Pages) > 0 {
		resp.MeanEfficiency = efficiencySum / float64(len(result.Pages))
	}

	for _, ex := range result.Excluded {
		resp.Excluded = append(resp.Excluded, excludedResponse{
			Index:  ex.Index,
			ItemID: ex.ItemID,
			Width:  ex.Width,
			Height: ex.Height,
			Code:   exclusionCode(ex),
			Reason: ex.Err.Error(),
		})
	}

	return resp
}

func exclusionCode(err error) string {
	switch {
	case errors.Is(err, atlas.ErrItemTooLarge):
		return "item_too_large"
	case errors.Is(err, atlas.ErrInvalidItem):
		return "invalid_item"
	default:
		return "unknown"
	}
}
