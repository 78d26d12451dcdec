package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/playlift/playlift/internal/convert"
	"github.com/playlift/playlift/internal/models"
	"github.com/playlift/playlift/internal/shared"
)

// fakeService scripts ConversionService responses for handler tests.
type fakeService struct {
	result       *convert.BatchResult
	convertErr   error
	alternatives []models.MatchCandidate
	searchErr    error
	lastRequest  convert.Request
}

func (f *fakeService) Convert(ctx context.Context, req convert.Request) (*convert.BatchResult, error) {
	f.lastRequest = req
	if f.convertErr != nil {
		return nil, f.convertErr
	}
	return f.result, nil
}

func (f *fakeService) FindAlternatives(ctx context.Context, trackName, artistName string, blacklistedURLs []string) ([]models.MatchCandidate, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.alternatives, nil
}

func newTestRouter(svc ConversionService) http.Handler {
	router := NewBasicRouter()
	router.Use(RequestID())
	NewAPIHandler(svc, nil, time.Second).Register(router)
	return router
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func sampleBatchResult() *convert.BatchResult {
	playlist := &models.Playlist{
		URL:      "https://open.spotify.com/playlist/test",
		Platform: "spotify",
		Name:     "Test",
	}
	for i := 0; i < 12; i++ {
		playlist.Tracks = append(playlist.Tracks, models.SourceTrack{
			Name: fmt.Sprintf("Track %d", i), Position: i,
		})
	}

	results := []models.TrackResult{
		{Source: playlist.Tracks[0], Success: true, Status: models.StatusMatched,
			Match: &models.MatchCandidate{Title: "Track 0", Uploader: "Someone", URL: "https://soundcloud.com/t0"}},
		{Source: playlist.Tracks[1], Success: false, Status: models.StatusNoMatch, Error: "no match"},
	}

	return &convert.BatchResult{
		Playlist:     playlist,
		Results:      results,
		Cursor:       models.BatchCursor{Start: 0, End: 5, Total: 12, HasMore: true},
		SuccessCount: 1,
		FailureCount: 1,
	}
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeJSON[map[string]string](t, rr)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request ID header")
	}
}

func TestHandleConvert(t *testing.T) {
	t.Run("successful batch", func(t *testing.T) {
		svc := &fakeService{result: sampleBatchResult()}
		router := newTestRouter(svc)

		rr := postJSON(t, router, "/api/convert", ConversionRequest{
			URL:       "https://open.spotify.com/playlist/test",
			BatchSize: 5,
		})

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		resp := decodeJSON[ConversionResponse](t, rr)

		if !resp.Success {
			t.Error("expected success true")
		}
		if resp.SuccessCount != 1 || resp.FailureCount != 1 {
			t.Errorf("expected counts 1/1, got %d/%d", resp.SuccessCount, resp.FailureCount)
		}
		if resp.Details.ConvertedTracks != 1 {
			t.Errorf("expected 1 converted track, got %d", resp.Details.ConvertedTracks)
		}
		if resp.Details.TotalTracks != 12 {
			t.Errorf("expected 12 total tracks, got %d", resp.Details.TotalTracks)
		}
		if resp.Details.SuccessRate != 0.5 {
			t.Errorf("expected success rate 0.5, got %v", resp.Details.SuccessRate)
		}

		batch := resp.Details.CurrentBatch
		if batch == nil {
			t.Fatal("expected current_batch")
		}
		if batch.Start != 0 || batch.End != 5 || batch.EndIndex != 5 {
			t.Errorf("unexpected batch window: %+v", batch)
		}
		if !batch.HasMore {
			t.Error("expected has_more true")
		}
	})

	t.Run("batch size defaults when omitted", func(t *testing.T) {
		svc := &fakeService{result: sampleBatchResult()}
		router := newTestRouter(svc)

		rr := postJSON(t, router, "/api/convert", ConversionRequest{URL: "https://open.spotify.com/playlist/test"})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if svc.lastRequest.BatchSize != 5 {
			t.Errorf("expected default batch size 5, got %d", svc.lastRequest.BatchSize)
		}
	})

	t.Run("unaccepted batch size is rejected", func(t *testing.T) {
		router := newTestRouter(&fakeService{result: sampleBatchResult()})

		rr := postJSON(t, router, "/api/convert", ConversionRequest{
			URL:       "https://open.spotify.com/playlist/test",
			BatchSize: 7,
		})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		resp := decodeJSON[ConversionResponse](t, rr)
		if resp.Success {
			t.Error("expected success false")
		}
		if !strings.Contains(resp.Message, "batch_size") {
			t.Errorf("message should name the field, got %q", resp.Message)
		}
	})

	t.Run("accepted batch sizes pass validation", func(t *testing.T) {
		for _, size := range []int{5, 10, 20, 50} {
			svc := &fakeService{result: sampleBatchResult()}
			router := newTestRouter(svc)

			rr := postJSON(t, router, "/api/convert", ConversionRequest{
				URL:       "https://open.spotify.com/playlist/test",
				BatchSize: size,
			})
			if rr.Code != http.StatusOK {
				t.Errorf("batch size %d: expected 200, got %d", size, rr.Code)
			}
		}
	})

	t.Run("missing url is rejected", func(t *testing.T) {
		router := newTestRouter(&fakeService{result: sampleBatchResult()})
		rr := postJSON(t, router, "/api/convert", ConversionRequest{BatchSize: 5})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		router := newTestRouter(&fakeService{})
		req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("{not json"))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("invalid range maps to 400", func(t *testing.T) {
		svc := &fakeService{convertErr: fmt.Errorf("%w: start_index -1", shared.ErrInvalidRange)}
		router := newTestRouter(svc)

		rr := postJSON(t, router, "/api/convert", ConversionRequest{
			URL:       "https://open.spotify.com/playlist/test",
			BatchSize: 5,
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("pipeline failure keeps the envelope", func(t *testing.T) {
		svc := &fakeService{convertErr: fmt.Errorf("%w: tracklist never appeared", shared.ErrExtractionTimeout)}
		router := newTestRouter(svc)

		rr := postJSON(t, router, "/api/convert", ConversionRequest{
			URL:       "https://open.spotify.com/playlist/test",
			BatchSize: 5,
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 envelope, got %d", rr.Code)
		}
		resp := decodeJSON[ConversionResponse](t, rr)
		if resp.Success {
			t.Error("expected success false")
		}
		if resp.Message == "" {
			t.Error("expected a failure message")
		}
	})

	t.Run("rate limited batch is flagged", func(t *testing.T) {
		result := sampleBatchResult()
		result.RateLimited = true
		router := newTestRouter(&fakeService{result: result})

		rr := postJSON(t, router, "/api/convert", ConversionRequest{
			URL:       "https://open.spotify.com/playlist/test",
			BatchSize: 5,
		})
		resp := decodeJSON[ConversionResponse](t, rr)
		if resp.Details.CurrentBatch == nil || !resp.Details.CurrentBatch.RateLimited {
			t.Error("expected rate_limited in current_batch")
		}
	})

	t.Run("wrong method is rejected", func(t *testing.T) {
		router := newTestRouter(&fakeService{})
		req := httptest.NewRequest(http.MethodGet, "/api/convert", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rr.Code)
		}
	})
}

func TestHandleSearch(t *testing.T) {
	t.Run("returns matches", func(t *testing.T) {
		svc := &fakeService{alternatives: []models.MatchCandidate{
			{Title: "Alt One", Uploader: "Uploader A", URL: "https://soundcloud.com/a"},
			{Title: "Alt Two", Uploader: "Uploader B", URL: "https://soundcloud.com/b"},
		}}
		router := newTestRouter(svc)

		rr := postJSON(t, router, "/api/search", SearchRequest{TrackName: "Song", ArtistName: "Artist"})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		resp := decodeJSON[SearchResponse](t, rr)
		if !resp.Success {
			t.Fatal("expected success true")
		}
		if len(resp.Matches) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(resp.Matches))
		}
		if resp.Matches[0].User.Username != "Uploader A" {
			t.Errorf("expected uploader in user.username, got %+v", resp.Matches[0])
		}
	})

	t.Run("no results", func(t *testing.T) {
		router := newTestRouter(&fakeService{})
		rr := postJSON(t, router, "/api/search", SearchRequest{TrackName: "Song"})
		resp := decodeJSON[SearchResponse](t, rr)
		if resp.Success {
			t.Error("expected success false for empty results")
		}
		if resp.Message == "" {
			t.Error("expected a message")
		}
	})

	t.Run("missing track name", func(t *testing.T) {
		router := newTestRouter(&fakeService{})
		rr := postJSON(t, router, "/api/search", SearchRequest{ArtistName: "Artist"})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("search failure keeps the envelope", func(t *testing.T) {
		svc := &fakeService{searchErr: fmt.Errorf("%w: while waiting for results", shared.ErrRateLimited)}
		router := newTestRouter(svc)

		rr := postJSON(t, router, "/api/search", SearchRequest{TrackName: "Song"})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 envelope, got %d", rr.Code)
		}
		resp := decodeJSON[SearchResponse](t, rr)
		if resp.Success {
			t.Error("expected success false")
		}
	})
}

func TestCORS(t *testing.T) {
	router := NewBasicRouter()
	router.Use(CORS())
	NewAPIHandler(&fakeService{}, nil, 0).Register(router)

	req := httptest.NewRequest(http.MethodOptions, "/api/convert", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS headers on preflight")
	}
}
