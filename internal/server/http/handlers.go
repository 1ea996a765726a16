package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scholarweave/researcher-service/internal/domain"
	"github.com/scholarweave/researcher-service/internal/recommend"
)

// maxRequestBodySize caps inbound request bodies at 1 MB.
const maxRequestBodySize = 1 << 20

// backfillRequest is the JSON request body for starting a backfill run.
type backfillRequest struct {
	Mode string `json:"mode"`
}

// resolveRequest is the JSON request body for resolving one researcher.
// The ORCID is optional; without it the stored display name is used.
type resolveRequest struct {
	Orcid string `json:"orcid,omitempty"`
}

// resolveResponse reports the outcome of a single-record resolution using
// the same status vocabulary as batch backfill entries.
type resolveResponse struct {
	ResearcherID string                `json:"researcher_id"`
	Status       domain.BackfillStatus `json:"status"`
	TopicCount   int                   `json:"topic_count,omitempty"`
	Researcher   *researcherResponse   `json:"researcher,omitempty"`
}

// researcherResponse is the JSON shape of a researcher record.
type researcherResponse struct {
	ID               string    `json:"id"`
	DisplayName      string    `json:"display_name,omitempty"`
	Orcid            string    `json:"orcid,omitempty"`
	OpenAlexAuthorID string    `json:"openalex_author_id,omitempty"`
	Affiliation      string    `json:"affiliation,omitempty"`
	Topics           []string  `json:"topics"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type suggestionsResponse struct {
	Suggestions []domain.Suggestion `json:"suggestions"`
	Count       int                 `json:"count"`
}

type topicsResponse struct {
	Topics []domain.TopicCount `json:"topics"`
	Count  int                 `json:"count"`
}

func domainResearcherToResponse(r *domain.Researcher) *researcherResponse {
	return &researcherResponse{
		ID:               r.ID,
		DisplayName:      r.DisplayName,
		Orcid:            r.ORCID,
		OpenAlexAuthorID: r.OpenAlexAuthorID,
		Affiliation:      r.Affiliation,
		Topics:           r.Topics,
		Active:           r.Active,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// decodeJSONBody reads and unmarshals a size-limited JSON request body.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	return true
}

// suggestHandler handles POST /api/v1/suggestions.
func (s *Server) suggestHandler(w http.ResponseWriter, r *http.Request) {
	var req recommend.SuggestionRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	start := time.Now()
	suggestions, err := s.suggestions.Suggest(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordSuggestionQuery(len(suggestions), time.Since(start).Seconds())
	}

	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{
		Suggestions: suggestions,
		Count:       len(suggestions),
	})
}

// topicsHandler handles GET /api/v1/topics.
func (s *Server) topicsHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := s.suggestions.Topics(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if counts == nil {
		counts = []domain.TopicCount{}
	}
	writeJSON(w, http.StatusOK, topicsResponse{
		Topics: counts,
		Count:  len(counts),
	})
}

// resolveHandler handles POST /api/v1/researchers/{researcherID}/resolve.
// With an ORCID in the body it applies a manual resolution; without one it
// attempts a name-based resolution, applying only an unambiguous match.
func (s *Server) resolveHandler(w http.ResponseWriter, r *http.Request) {
	researcherID := chi.URLParam(r, "researcherID")
	if researcherID == "" {
		writeError(w, http.StatusBadRequest, "researcher id is required")
		return
	}

	var req resolveRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Orcid) != "" {
		s.resolveManual(w, r, researcherID, req.Orcid)
		return
	}
	s.resolveAuto(w, r, researcherID)
}

func (s *Server) resolveManual(w http.ResponseWriter, r *http.Request, researcherID, orcid string) {
	researcher, err := s.runner.ResolveManual(r.Context(), researcherID, orcid)
	if err != nil {
		if errors.Is(err, domain.ErrAuthorNotFound) {
			writeJSON(w, http.StatusOK, resolveResponse{
				ResearcherID: researcherID,
				Status:       domain.StatusAuthorNotFound,
			})
			return
		}
		writeDomainError(w, err)
		return
	}

	status := domain.StatusUpdated
	if !researcher.HasTopics() {
		status = domain.StatusNoTopicsFound
	}
	writeJSON(w, http.StatusOK, resolveResponse{
		ResearcherID: researcherID,
		Status:       status,
		TopicCount:   len(researcher.Topics),
		Researcher:   domainResearcherToResponse(researcher),
	})
}

func (s *Server) resolveAuto(w http.ResponseWriter, r *http.Request, researcherID string) {
	researcher, status, err := s.runner.ResolveAuto(r.Context(), researcherID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := resolveResponse{
		ResearcherID: researcherID,
		Status:       status,
	}
	if status == domain.StatusUpdated || status == domain.StatusNoTopicsFound {
		resp.TopicCount = len(researcher.Topics)
		resp.Researcher = domainResearcherToResponse(researcher)
	}
	writeJSON(w, http.StatusOK, resp)
}

// backfillHandler handles POST /admin/backfill.
func (s *Server) backfillHandler(w http.ResponseWriter, r *http.Request) {
	var req backfillRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Mode == "" {
		writeError(w, http.StatusBadRequest, "mode is required")
		return
	}

	report, err := s.runner.Run(r.Context(), domain.BackfillMode(req.Mode))
	if err != nil {
		if errors.Is(err, domain.ErrBackfillRunning) {
			writeError(w, http.StatusConflict, "a backfill run of this mode is already in progress")
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// writeDomainError maps domain errors to appropriate HTTP status codes and
// writes a JSON error response. Internal error details are not leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrBackfillRunning):
		writeError(w, http.StatusConflict, "backfill already running")
	case errors.Is(err, domain.ErrRegistryUnavailable):
		writeError(w, http.StatusBadGateway, "upstream registry unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
