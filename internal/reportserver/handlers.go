package reportserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sakhalinlab/waveproc/internal/log"
	"github.com/sakhalinlab/waveproc/internal/storage/sqlite"
	"github.com/sakhalinlab/waveproc/internal/types"
)

// Handlers holds the report API handlers and their database client.
type Handlers struct {
	db        *sqlite.Client
	formatter *Formatter
}

// NewHandlers creates the handler set for the report API.
func NewHandlers(db *sqlite.Client) *Handlers {
	return &Handlers{
		db:        db,
		formatter: NewFormatter(),
	}
}

// GetHealth reports whether the results database is reachable.
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	if err := h.db.DB.Ping(); err != nil {
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}
	h.formatter.WriteResponseStatus(w, req, code, status)
}

// GetRuns returns the most recent runs.  The limit query parameter caps the
// result count, defaulting to 100.
func (h *Handlers) GetRuns(w http.ResponseWriter, req *http.Request) {
	limit := 0
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.db.ListRuns(limit)
	if err != nil {
		log.Errorf("error listing runs: %v", err)
		http.Error(w, "error listing runs", http.StatusInternalServerError)
		return
	}
	h.formatter.WriteResponse(w, req, runs)
}

// GetRun returns a single run by ID.
func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	res, ok := h.lookupRun(w, req)
	if !ok {
		return
	}
	h.formatter.WriteResponse(w, req, res)
}

// GetRunStats returns just the wave statistics for a run.
func (h *Handlers) GetRunStats(w http.ResponseWriter, req *http.Request) {
	res, ok := h.lookupRun(w, req)
	if !ok {
		return
	}
	if res.Stats == nil {
		http.Error(w, "run has no statistics", http.StatusNotFound)
		return
	}
	h.formatter.WriteResponse(w, req, res.Stats)
}

func (h *Handlers) lookupRun(w http.ResponseWriter, req *http.Request) (*types.RunResult, bool) {
	runID := mux.Vars(req)["id"]
	res, err := h.db.GetRun(runID)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
		} else {
			log.Errorf("error fetching run %s: %v", runID, err)
			http.Error(w, "error fetching run", http.StatusInternalServerError)
		}
		return nil, false
	}
	return res, true
}
