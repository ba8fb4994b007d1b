package service

import (
	"net/http"
	"strconv"
	"strings"

	"peerpay_settlement/internal/dao/mongodb"
	"peerpay_settlement/internal/dao/repository"
	"peerpay_settlement/internal/models"

	"go.uber.org/zap"
)

const debugDefaultLimit = 50

// KnownWorkers is the list of worker names the debug surface reports on.
type KnownWorkers []string

var statusByQueryValue = map[string]string{
	"pending":    models.OutboxStatusPending,
	"processing": models.OutboxStatusProcessing,
	"sent":       models.OutboxStatusSent,
	"failed":     models.OutboxStatusFailed,
}

// DebugService exposes the read-only inspection surface: recent outbox rows,
// per-status counts, and worker heartbeats. Never registered in release mode,
// so the routes are indistinguishable from nonexistent ones there.
type DebugService struct {
	outboxRepo repository.OutboxRepository
	heartbeats repository.HeartbeatRepository
	workers    []string
	logger     *zap.Logger
}

// NewDebugService creates a new DebugService. workers lists the worker names
// the /debug/workers endpoint reports on.
func NewDebugService(
	outboxRepo repository.OutboxRepository,
	heartbeats repository.HeartbeatRepository,
	workers KnownWorkers,
	logger *zap.Logger,
) *DebugService {
	return &DebugService{
		outboxRepo: outboxRepo,
		heartbeats: heartbeats,
		workers:    workers,
		logger:     logger.Named("DebugService"),
	}
}

// Register mounts the debug routes on the mux.
func (s *DebugService) Register(mux *http.ServeMux) {
	mux.HandleFunc("/debug/outbox", s.handleOutbox)
	mux.HandleFunc("/debug/workers", s.handleWorkers)
}

func (s *DebugService) handleOutbox(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		WriteHttpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	statusParam := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	if statusParam == "" {
		statusParam = "pending"
	}
	status, ok := statusByQueryValue[statusParam]
	if !ok {
		WriteHttpError(w, http.StatusBadRequest, "unknown status: "+statusParam)
		return
	}

	limit := int64(debugDefaultLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			WriteHttpError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	// The DAO caps the limit again; clamp here too so the response size is
	// bounded no matter which repository implementation serves the request.
	if limit > mongodb.MaxRecentLimit {
		limit = mongodb.MaxRecentLimit
	}

	rows, err := s.outboxRepo.Recent(r.Context(), status, limit)
	if err != nil {
		s.logger.Error("Failed to list outbox records", zap.Error(err))
		WriteHttpError(w, http.StatusInternalServerError, "failed to list outbox records")
		return
	}

	rawCounts, err := s.outboxRepo.CountsByStatus(r.Context())
	if err != nil {
		s.logger.Error("Failed to count outbox records", zap.Error(err))
		WriteHttpError(w, http.StatusInternalServerError, "failed to count outbox records")
		return
	}

	counts := make(map[string]int64, len(rawCounts))
	var total int64
	for storedStatus, count := range rawCounts {
		counts[strings.ToLower(storedStatus)] = count
		total += count
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"rows":   rows,
		"counts": counts,
		"total":  total,
	})
}

func (s *DebugService) handleWorkers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		WriteHttpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stored, err := s.heartbeats.All(r.Context())
	if err != nil {
		s.logger.Error("Failed to list worker heartbeats", zap.Error(err))
		WriteHttpError(w, http.StatusInternalServerError, "failed to list worker heartbeats")
		return
	}

	// Every stored heartbeat is reported, plus a status line for each known
	// worker that has never written one.
	out := make(map[string]any, len(s.workers)+len(stored))
	for _, hb := range stored {
		out[hb.Worker] = hb
	}
	for _, name := range s.workers {
		if _, ok := out[name]; !ok {
			out[name] = map[string]string{"status": "not running or no heartbeat file"}
		}
	}

	WriteJSON(w, http.StatusOK, out)
}
