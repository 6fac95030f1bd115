// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/landcharge/devtrack/internal/adapters/server/common"
	"github.com/landcharge/devtrack/internal/domain"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	steps *common.StepService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the step service.
func NewHandler(steps *common.StepService) *Handler {
	return &Handler{steps: steps}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)
	switch {
	case path == "projects":
		switch r.Method {
		case http.MethodGet:
			h.handleListProjects(w, r)
		case http.MethodPost:
			h.handleCreateProject(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
		return
	}

	if projectID, rest, ok := resolveProjectSubpath(path); ok {
		switch rest {
		case "steps":
			switch r.Method {
			case http.MethodGet:
				h.handleListSteps(w, r, projectID)
			case http.MethodPost:
				h.handleCreateStep(w, r, projectID)
			default:
				writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
			return
		case "steps/bootstrap":
			if r.Method != http.MethodPost {
				writeMethodNotAllowed(w, http.MethodPost)
				return
			}
			h.handleBootstrapSteps(w, r, projectID)
			return
		case "steps/reorder":
			if r.Method != http.MethodPost {
				writeMethodNotAllowed(w, http.MethodPost)
				return
			}
			h.handleReorderSteps(w, r, projectID)
			return
		case "contacts":
			switch r.Method {
			case http.MethodGet:
				h.handleListContacts(w, r, projectID)
			case http.MethodPost:
				h.handleCreateContact(w, r, projectID)
			default:
				writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
			return
		}
	}

	if stepID, ok := resolveStepID(path); ok {
		switch r.Method {
		case http.MethodPatch:
			h.handlePatchStep(w, r, stepID)
		case http.MethodDelete:
			h.handleDeleteStep(w, r, stepID)
		default:
			writeMethodNotAllowed(w, http.MethodPatch, http.MethodDelete)
		}
		return
	}

	writeJSONError(w, http.StatusNotFound, APIError{
		Code:    "not_found",
		Message: "endpoint not found",
	})
}

// handleListProjects serves GET `/projects`.
func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.steps.ListProjects(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	payload := make([]common.ProjectPayload, 0, len(projects))
	for _, p := range projects {
		payload = append(payload, common.ProjectPayloadFrom(p))
	}
	writeJSON(w, http.StatusOK, payload)
}

// handleCreateProject serves POST `/projects`.
func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req common.CreateProjectRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	project, err := h.steps.CreateProject(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, common.ProjectPayloadFrom(project))
}

// handleListSteps serves GET `/projects/{id}/steps`.
func (h *Handler) handleListSteps(w http.ResponseWriter, r *http.Request, projectID string) {
	steps, err := h.steps.ListSteps(r.Context(), projectID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stepPayloads(steps))
}

// handleCreateStep serves POST `/projects/{id}/steps`.
func (h *Handler) handleCreateStep(w http.ResponseWriter, r *http.Request, projectID string) {
	var req common.CreateStepRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	step, err := h.steps.CreateStep(r.Context(), projectID, req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, common.StepPayloadFrom(step))
}

// handleBootstrapSteps serves POST `/projects/{id}/steps/bootstrap`.
func (h *Handler) handleBootstrapSteps(w http.ResponseWriter, r *http.Request, projectID string) {
	steps, err := h.steps.BootstrapSteps(r.Context(), projectID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stepPayloads(steps))
}

// handleReorderSteps serves POST `/projects/{id}/steps/reorder`.
func (h *Handler) handleReorderSteps(w http.ResponseWriter, r *http.Request, projectID string) {
	var req common.ReorderStepsRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if err := h.steps.ReorderSteps(r.Context(), projectID, req.IDs); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListContacts serves GET `/projects/{id}/contacts`.
func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request, projectID string) {
	contacts, err := h.steps.ListContacts(r.Context(), projectID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	payload := make([]common.ContactPayload, 0, len(contacts))
	for _, c := range contacts {
		payload = append(payload, common.ContactPayloadFrom(c))
	}
	writeJSON(w, http.StatusOK, payload)
}

// handleCreateContact serves POST `/projects/{id}/contacts`.
func (h *Handler) handleCreateContact(w http.ResponseWriter, r *http.Request, projectID string) {
	var req common.CreateContactRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	contact, err := h.steps.CreateContact(r.Context(), projectID, req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, common.ContactPayloadFrom(contact))
}

// handlePatchStep serves PATCH `/steps/{id}`. The body carries only the
// fields being changed; the response carries the complete updated row.
func (h *Handler) handlePatchStep(w http.ResponseWriter, r *http.Request, stepID string) {
	var raw map[string]json.RawMessage
	if err := decodeJSONBody(r.Context(), w, r, &raw); err != nil {
		writeErrorFrom(w, err)
		return
	}
	patch, err := common.DecodeStepPatch(raw)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	step, err := h.steps.PatchStep(r.Context(), stepID, patch)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common.StepPayloadFrom(step))
}

// handleDeleteStep serves DELETE `/steps/{id}`.
func (h *Handler) handleDeleteStep(w http.ResponseWriter, r *http.Request, stepID string) {
	if err := h.steps.DeleteStep(r.Context(), stepID); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// stepPayloads converts a step list to its wire form.
func stepPayloads(steps []domain.Activity) []common.StepPayload {
	out := make([]common.StepPayload, 0, len(steps))
	for _, step := range steps {
		out = append(out, common.StepPayloadFrom(step))
	}
	return out
}

// resolveProjectSubpath parses `projects/{id}/{rest}` and returns `{id}` and `{rest}`.
func resolveProjectSubpath(path string) (string, string, bool) {
	const prefix = "projects/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	remainder := strings.TrimPrefix(path, prefix)
	id, rest, found := strings.Cut(remainder, "/")
	if !found || strings.TrimSpace(id) == "" {
		return "", "", false
	}
	return id, rest, true
}

// resolveStepID parses `steps/{id}` and returns `{id}`.
func resolveStepID(path string) (string, bool) {
	const prefix = "steps/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimPrefix(path, prefix))
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrNotDeletable):
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "not_deletable",
			Message: err.Error(),
			Hint:    "Only custom steps can be deleted.",
		})
	case errors.Is(err, common.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidDate), errors.Is(err, domain.ErrInvalidRequirement):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
