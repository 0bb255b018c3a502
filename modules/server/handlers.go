package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/modules/research"
)

const maxBodyBytes = 1 << 20

func unavailable(w http.ResponseWriter, what string) {
	writeError(w, http.StatusServiceUnavailable, what+" is not configured")
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	if s.services.Notices == nil {
		unavailable(w, "Notice feed")
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"
	listing, err := s.services.Notices.ListNotices(r.Context(), refresh)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleFinancials(w http.ResponseWriter, r *http.Request) {
	if s.services.Registry == nil {
		unavailable(w, "Companies House")
		return
	}
	company := strings.TrimSpace(r.URL.Query().Get("company"))
	if company == "" {
		writeError(w, http.StatusBadRequest, "Company name is required")
		return
	}
	result, err := s.services.Registry.LookupFinancials(r.Context(), company)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.services.Analytics == nil {
		unavailable(w, "Analytics")
		return
	}
	q := r.URL.Query()
	dashboard, err := s.services.Analytics.Dashboard(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// decodeRequest reads a research request body; ok is false once an error
// response has been written.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (req research.Request, ok bool) {
	if s.services.Research == nil {
		unavailable(w, "Research")
		return req, false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	return req, true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	out, err := s.services.Research.Analyze(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDraftBlog(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	out, err := s.services.Research.DraftBlog(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDraftLinkedIn(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	out, err := s.services.Research.DraftLinkedIn(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type health struct {
	Status string              `json:"status"`
	Time   string              `json:"time"`
	Caches []common.CacheStats `json:"caches"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := health{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
		Caches: make([]common.CacheStats, 0, len(s.caches)),
	}
	for _, c := range s.caches {
		h.Caches = append(h.Caches, c.Stats())
	}
	writeJSON(w, http.StatusOK, h)
}
