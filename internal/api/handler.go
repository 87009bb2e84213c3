package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eugenenazirov/atlas-packer/internal/atlas"
	"github.com/eugenenazirov/atlas-packer/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const (
	defaultMaxItems         = 10_000
	defaultBatchMaxJobs     = 32
	defaultBatchConcurrency = 4
	maxBodyBytes            = 8 << 20
)

var (
	errTooManyItems = errors.New("too many items in request")
)

// Handler wires packer and storage dependencies into HTTP handlers.
type Handler struct {
	packer  atlas.Packer
	storage storage.Storage
	logger  *zap.Logger

	clock func() time.Time
	newID func() string

	maxItems         int
	batchMaxJobs     int
	batchConcurrency int

	mu                sync.RWMutex
	settingsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithLogger sets the logger used for packing diagnostics.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithIDGenerator overrides how identifiers are assigned to items submitted without one.
func WithIDGenerator(newID func() string) HandlerOption {
	return func(h *Handler) {
		h.newID = newID
	}
}

// WithLimits bounds request sizes. Non-positive values keep the defaults.
func WithLimits(maxItems, batchMaxJobs, batchConcurrency int) HandlerOption {
	return func(h *Handler) {
		if maxItems > 0 {
			h.maxItems = maxItems
		}
		if batchMaxJobs > 0 {
			h.batchMaxJobs = batchMaxJobs
		}
		if batchConcurrency > 0 {
			h.batchConcurrency = batchConcurrency
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(packer atlas.Packer, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		packer:  packer,
		storage: store,
		logger:  zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
		newID:            uuid.NewString,
		maxItems:         defaultMaxItems,
		batchMaxJobs:     defaultBatchMaxJobs,
		batchConcurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.settingsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	_ = r
	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := settingsResponse{
		Settings:  settings,
		UpdatedAt: h.currentSettingsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req storage.Settings
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.storage.SetSettings(req); err != nil {
		if errors.Is(err, storage.ErrInvalidSettings) {
			writeError(w, http.StatusBadRequest, "Invalid settings", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markSettingsUpdated()

	settings, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := settingsResponse{
		Settings:  settings,
		UpdatedAt: h.currentSettingsUpdatedAt(),
		Message:   "Settings updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePack(w http.ResponseWriter, r *http.Request) {
	var req packRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	defaults, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp, err := h.pack(r.Context(), req, defaults)
	if err != nil {
		writePackError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePackBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Jobs) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "jobs must contain at least one packing job")
		return
	}
	if len(req.Jobs) > h.batchMaxJobs {
		writeError(w, http.StatusRequestEntityTooLarge, "Too many jobs",
			fmt.Sprintf("a batch accepts at most %d jobs, got %d", h.batchMaxJobs, len(req.Jobs)))
		return
	}

	defaults, err := h.storage.GetSettings()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	start := time.Now()
	results := make([]packResponse, len(req.Jobs))

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(h.batchConcurrency)
	for i, job := range req.Jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := h.pack(ctx, job, defaults)
			if err != nil {
				return &jobError{index: i, err: err}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var jobErr *jobError
		switch {
		case errors.As(err, &jobErr):
			writePackError(w, jobErr)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "Request cancelled", err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{
		Results:           results,
		CalculationTimeMs: time.Since(start).Milliseconds(),
	})
}

// pack runs a single packing job. Request fields override the stored defaults.
func (h *Handler) pack(ctx context.Context, req packRequest, defaults storage.Settings) (packResponse, error) {
	if len(req.Items) > h.maxItems {
		return packResponse{}, fmt.Errorf("%w: at most %d allowed, got %d", errTooManyItems, h.maxItems, len(req.Items))
	}

	cfg := atlas.Config{
		PageSize: defaults.PageSize,
		Padding:  defaults.Padding,
		Strict:   req.Strict,
	}
	if req.PageSize != nil {
		cfg.PageSize = *req.PageSize
	}
	if req.Padding != nil {
		cfg.Padding = *req.Padding
	}
	if err := (storage.Settings{PageSize: cfg.PageSize, Padding: cfg.Padding}).Validate(); err != nil {
		return packResponse{}, err
	}

	items := make([]atlas.Item, len(req.Items))
	for i, item := range req.Items {
		id := item.ID
		if id == "" {
			id = h.newID()
		}
		items[i] = atlas.Item{ID: id, Width: item.Width, Height: item.Height}
	}

	start := time.Now()
	result, err := h.packer.Pack(items, cfg)
	elapsed := time.Since(start)
	if err != nil {
		return packResponse{}, err
	}

	if len(result.Excluded) > 0 {
		h.logger.Warn("items excluded from atlas",
			zap.Int("requested", len(items)),
			zap.Int("excluded", len(result.Excluded)),
			zap.Int("page_size", cfg.PageSize),
			zap.Int("padding", cfg.Padding),
			zap.String("request_id", requestIDFromContext(ctx)),
		)
	}

	return newPackResponse(result, cfg, elapsed), nil
}

func (h *Handler) currentSettingsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settingsUpdatedAt
}

func (h *Handler) markSettingsUpdated() {
	h.mu.Lock()
	h.settingsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// jobError ties a packing failure to its position in a batch.
type jobError struct {
	index int
	err   error
}

func (e *jobError) Error() string {
	return fmt.Sprintf("job %d: %v", e.index, e.err)
}

func (e *jobError) Unwrap() error {
	return e.err
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request too large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return false
	}
	return true
}

func writePackError(w http.ResponseWriter, err error) {
	var itemErr *atlas.ItemError
	switch {
	case errors.Is(err, errTooManyItems):
		writeError(w, http.StatusRequestEntityTooLarge, "Too many items", err.Error())
	case errors.Is(err, storage.ErrInvalidSettings), errors.Is(err, atlas.ErrInvalidConfig):
		writeError(w, http.StatusBadRequest, "Invalid packing settings", err.Error())
	case errors.As(err, &itemErr):
		suggestion := fmt.Sprintf("Fix or remove the item at index %d, or disable strict mode to skip invalid items", itemErr.Index)
		writeError(w, http.StatusUnprocessableEntity, "Invalid item", err.Error(), suggestion)
	default:
		writeInternalError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
