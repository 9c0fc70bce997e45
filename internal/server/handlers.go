package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ziwdon/YouTubeSummarizer/internal/engine"
	"github.com/ziwdon/YouTubeSummarizer/internal/engine/sources"
	"github.com/ziwdon/YouTubeSummarizer/internal/store"
)

const maxRequestBody = 64 << 10

type summarizeRequest struct {
	URL   string `json:"url"`
	Lang  string `json:"lang,omitempty"`
	Style string `json:"style,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if !engine.ValidStyle(req.Style) {
		writeError(w, http.StatusBadRequest, "unknown style "+strconv.Quote(req.Style))
		return
	}

	started := time.Now()
	summary, err := sources.Summarize(r.Context(), req.URL, req.Lang, engine.SummaryStyle(req.Style))
	if err != nil {
		status := summarizeStatus(err)
		slog.Warn("summarize failed", "url", req.URL, "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}

	if !summary.Cached {
		if err := store.Record(r.Context(), summary); err != nil {
			slog.Warn("history write failed", "error", err)
		}
	}

	slog.Info("summarize ok",
		"platform", summary.Platform,
		"video_id", summary.VideoID,
		"source", summary.Source,
		"cached", summary.Cached,
		"duration", time.Since(started).Round(time.Millisecond))
	writeJSON(w, http.StatusOK, summary)
}

// summarizeStatus maps pipeline errors onto HTTP status codes.
func summarizeStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnsupportedURL):
		return http.StatusBadRequest
	case errors.Is(err, sources.ErrNoTranscript):
		return http.StatusNotFound
	case errors.Is(err, sources.ErrPollBudget):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	st := store.Get()
	if st == nil {
		writeJSON(w, http.StatusOK, []store.Entry{})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := st.RecentSummaries(r.Context(), limit)
	if err != nil {
		slog.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(engine.FormatMetrics()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
