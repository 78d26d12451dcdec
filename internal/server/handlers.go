package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/playlift/playlift/internal/convert"
	"github.com/playlift/playlift/internal/models"
	"github.com/playlift/playlift/internal/shared"
)

// ConversionService is the orchestrator surface the API depends on.
type ConversionService interface {
	Convert(ctx context.Context, req convert.Request) (*convert.BatchResult, error)
	FindAlternatives(ctx context.Context, trackName, artistName string, blacklistedURLs []string) ([]models.MatchCandidate, error)
}

// Batch sizes accepted by convention: a small enumerated set bounding
// per-request automation cost. Larger windows mean proportionally longer
// requests and higher rate-limit risk.
var allowedBatchSizes = map[int]bool{5: true, 10: true, 20: true, 50: true}

const defaultBatchSize = 5

// ConversionRequest is the POST /api/convert body.
type ConversionRequest struct {
	URL            string `json:"url"`
	TargetPlatform string `json:"target_platform"`
	StartIndex     int    `json:"start_index"`
	BatchSize      int    `json:"batch_size"`
}

// CurrentBatch describes the processed window and the continuation point.
type CurrentBatch struct {
	Start       int  `json:"start"`
	End         int  `json:"end"`
	EndIndex    int  `json:"end_index"` // Start index for the next request
	HasMore     bool `json:"has_more"`
	RateLimited bool `json:"rate_limited,omitempty"`
}

// ConversionDetails carries per-track results and aggregate statistics.
type ConversionDetails struct {
	ConvertedTracks int                  `json:"converted_tracks"`
	TotalTracks     int                  `json:"total_tracks"`
	SuccessRate     float64              `json:"success_rate"`
	Tracks          []models.TrackResult `json:"tracks"`
	CurrentBatch    *CurrentBatch        `json:"current_batch,omitempty"`
}

// ConversionResponse is the POST /api/convert response envelope.
type ConversionResponse struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	Details      ConversionDetails `json:"details"`
}

// SearchRequest is the POST /api/search body.
type SearchRequest struct {
	TrackName       string   `json:"track_name"`
	ArtistName      string   `json:"artist_name"`
	BlacklistedURLs []string `json:"blacklisted_urls"`
}

// AlternativeUser identifies the uploader of an alternative match.
type AlternativeUser struct {
	Username string `json:"username"`
}

// Alternative is one ranked candidate in the search response.
type Alternative struct {
	Title string          `json:"title"`
	User  AlternativeUser `json:"user"`
	URL   string          `json:"url"`
}

// SearchResponse is the POST /api/search response envelope.
type SearchResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Matches []Alternative `json:"matches,omitempty"`
}

// APIHandler serves the conversion JSON API.
type APIHandler struct {
	svc            ConversionService
	logger         *log.Logger
	requestTimeout time.Duration
}

// NewAPIHandler creates the API handler. requestTimeout bounds one whole
// conversion batch; zero disables the bound.
func NewAPIHandler(svc ConversionService, logger *log.Logger, requestTimeout time.Duration) *APIHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &APIHandler{svc: svc, logger: logger, requestTimeout: requestTimeout}
}

// Register wires the API routes into a router.
func (h *APIHandler) Register(r Router) {
	r.Handle(http.MethodPost, "/api/convert", http.HandlerFunc(h.HandleConvert))
	r.Handle(http.MethodPost, "/api/search", http.HandlerFunc(h.HandleSearch))
	r.Handle(http.MethodGet, "/api/health", http.HandlerFunc(h.HandleHealth))
}

// HandleHealth is the liveness probe. No business logic.
func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "API is running"})
}

// HandleConvert runs one conversion batch window.
func (h *APIHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body: "+err.Error()))
		return
	}

	if req.BatchSize == 0 {
		req.BatchSize = defaultBatchSize
	}
	if !allowedBatchSizes[req.BatchSize] {
		writeJSON(w, http.StatusBadRequest, errorResponse(fmt.Sprintf("batch_size %d not accepted; use 5, 10, 20, or 50", req.BatchSize)))
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("url is required"))
		return
	}

	ctx := r.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	requestID := RequestIDFrom(r.Context())
	logger := h.logger.With("request_id", requestID)

	result, err := h.svc.Convert(ctx, convert.Request{
		URL:            req.URL,
		TargetPlatform: req.TargetPlatform,
		StartIndex:     req.StartIndex,
		BatchSize:      req.BatchSize,
	})
	if err != nil {
		logger.Error("conversion failed", "url", req.URL, "error", err)

		status := http.StatusOK // Business failures keep the envelope contract
		if errors.Is(err, shared.ErrInvalidRange) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse("conversion failed: "+err.Error()))
		return
	}

	batch := &CurrentBatch{
		Start:       result.Cursor.Start,
		End:         result.Cursor.End,
		EndIndex:    result.Cursor.End,
		HasMore:     result.Cursor.HasMore,
		RateLimited: result.RateLimited,
	}

	writeJSON(w, http.StatusOK, ConversionResponse{
		Success:      true,
		Message:      fmt.Sprintf("Conversion completed with %d successes and %d failures.", result.SuccessCount, result.FailureCount),
		SuccessCount: result.SuccessCount,
		FailureCount: result.FailureCount,
		Details: ConversionDetails{
			ConvertedTracks: result.SuccessCount,
			TotalTracks:     result.Cursor.Total,
			SuccessRate:     result.SuccessRate(),
			Tracks:          result.Results,
			CurrentBatch:    batch,
		},
	})
}

// HandleSearch returns ranked alternatives for one track, excluding
// blacklisted URLs.
func (h *APIHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SearchResponse{Success: false, Message: "invalid request body: " + err.Error()})
		return
	}
	if req.TrackName == "" {
		writeJSON(w, http.StatusBadRequest, SearchResponse{Success: false, Message: "track_name is required"})
		return
	}

	ctx := r.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	candidates, err := h.svc.FindAlternatives(ctx, req.TrackName, req.ArtistName, req.BlacklistedURLs)
	if err != nil {
		h.logger.Error("alternative search failed", "track", req.TrackName, "error", err)
		writeJSON(w, http.StatusOK, SearchResponse{Success: false, Message: "Search failed: " + err.Error()})
		return
	}

	if len(candidates) == 0 {
		writeJSON(w, http.StatusOK, SearchResponse{Success: false, Message: "No matches found"})
		return
	}

	matches := make([]Alternative, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, Alternative{
			Title: c.Title,
			User:  AlternativeUser{Username: c.Uploader},
			URL:   c.URL,
		})
	}

	writeJSON(w, http.StatusOK, SearchResponse{Success: true, Matches: matches})
}

// errorResponse builds the standard failure envelope for /api/convert.
func errorResponse(message string) ConversionResponse {
	return ConversionResponse{
		Success: false,
		Message: message,
		Details: ConversionDetails{Tracks: []models.TrackResult{}},
	}
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
