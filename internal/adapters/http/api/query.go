// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/scoregraph/scoregraph/internal/adapters/graphstore"
	engine "github.com/scoregraph/scoregraph/internal/app"
	"github.com/scoregraph/scoregraph/internal/domain/intent"
	"github.com/scoregraph/scoregraph/internal/domain/result"
	"github.com/scoregraph/scoregraph/internal/domain/teams"
)

// queryRequest mirrors the OpenAPI schema for POST /query.
type queryRequest struct {
	IntentKind string `json:"intent_kind"`
	TopicA     string `json:"topic_a"`
	TopicB     string `json:"topic_b,omitempty"`
	Grade      string `json:"grade,omitempty"`
}

func (q queryRequest) bag() map[string]string {
	return map[string]string{
		intent.ParamIntentKind: q.IntentKind,
		intent.ParamTopicA:     q.TopicA,
		intent.ParamTopicB:     q.TopicB,
		intent.ParamGrade:      q.Grade,
	}
}

// QueryHandler handles query requests.
type QueryHandler struct {
	deps Dependencies
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(deps Dependencies) *QueryHandler {
	return &QueryHandler{deps: deps}
}

// HandleQuery handles POST /query requests.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := h.deps.Query(r.Context(), req.bag())
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// classify maps engine errors onto HTTP status codes and stable error codes.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, intent.ErrUnsupportedIntent):
		return http.StatusBadRequest, "unsupported_intent"
	case errors.Is(err, intent.ErrMissingParameter):
		return http.StatusBadRequest, "missing_parameter"
	case errors.Is(err, engine.ErrTopicNotFound):
		return http.StatusNotFound, "topic_not_found"
	case errors.Is(err, result.ErrNoData), errors.Is(err, teams.ErrNoStudents):
		return http.StatusNotFound, "no_data"
	case errors.Is(err, engine.ErrTimeout):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, graphstore.ErrConnection):
		return http.StatusBadGateway, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
