// Package restapi provides the HTTP client for the devtrack server API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/landcharge/devtrack/internal/adapters/server/common"
	"github.com/landcharge/devtrack/internal/app"
	"github.com/landcharge/devtrack/internal/domain"
)

// defaultTimeout bounds one API round trip when the caller supplies no client.
const defaultTimeout = 15 * time.Second

// maxResponseBodyBytes limits decoded JSON response size.
const maxResponseBodyBytes int64 = 4 << 20

// Client calls the devtrack REST API. It implements app.Client.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New constructs a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListProjects fetches all projects.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var payload []common.ProjectPayload
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(payload))
	for _, p := range payload {
		project, err := projectFromPayload(p)
		if err != nil {
			return nil, err
		}
		out = append(out, project)
	}
	return out, nil
}

// CreateProject creates one project.
func (c *Client) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	req := common.CreateProjectRequest{Name: p.Name, Type: string(p.Type)}
	var payload common.ProjectPayload
	if err := c.do(ctx, http.MethodPost, "/projects", req, &payload); err != nil {
		return domain.Project{}, err
	}
	return projectFromPayload(payload)
}

// ListActivities fetches all rows for one project.
func (c *Client) ListActivities(ctx context.Context, projectID string) ([]domain.Activity, error) {
	var payload []common.StepPayload
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/steps", nil, &payload); err != nil {
		return nil, err
	}
	return activitiesFromPayloads(payload)
}

// CreateActivity creates one row. The server assigns the identifier; the
// submitted one is advisory only.
func (c *Client) CreateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	req := common.CreateStepRequest{Name: a.Name, Phase: a.Phase}
	var payload common.StepPayload
	if err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(a.ProjectID)+"/steps", req, &payload); err != nil {
		return domain.Activity{}, err
	}
	return payload.ToActivity()
}

// UpdateActivity submits a partial update and returns the authoritative row.
// The request body carries only the changed fields, never derived ones.
func (c *Client) UpdateActivity(ctx context.Context, id string, patch domain.Patch) (domain.Activity, error) {
	body := common.EncodeStepPatch(patch)
	var payload common.StepPayload
	if err := c.do(ctx, http.MethodPatch, "/steps/"+url.PathEscape(id), body, &payload); err != nil {
		return domain.Activity{}, err
	}
	return payload.ToActivity()
}

// DeleteActivity deletes one row.
func (c *Client) DeleteActivity(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/steps/"+url.PathEscape(id), nil, nil)
}

// ReorderActivities persists a new row order for one project.
func (c *Client) ReorderActivities(ctx context.Context, projectID string, ids []string) error {
	req := common.ReorderStepsRequest{IDs: ids}
	return c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(projectID)+"/steps/reorder", req, nil)
}

// BootstrapActivities seeds a project's rows from its template.
func (c *Client) BootstrapActivities(ctx context.Context, projectID string) ([]domain.Activity, error) {
	var payload []common.StepPayload
	if err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(projectID)+"/steps/bootstrap", nil, &payload); err != nil {
		return nil, err
	}
	return activitiesFromPayloads(payload)
}

// ListContacts fetches all contacts for one project.
func (c *Client) ListContacts(ctx context.Context, projectID string) ([]domain.Contact, error) {
	var payload []common.ContactPayload
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/contacts", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]domain.Contact, 0, len(payload))
	for _, p := range payload {
		out = append(out, contactFromPayload(p))
	}
	return out, nil
}

// CreateContact creates one contact.
func (c *Client) CreateContact(ctx context.Context, contact domain.Contact) (domain.Contact, error) {
	req := common.CreateContactRequest{
		Organization:   contact.Organization,
		Type:           contact.Type,
		Responsibility: contact.Responsibility,
		Name:           contact.Name,
		Title:          contact.Title,
		Email:          contact.Email,
		Phone1:         contact.Phone1,
		Phone2:         contact.Phone2,
	}
	var payload common.ContactPayload
	if err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(contact.ProjectID)+"/contacts", req, &payload); err != nil {
		return domain.Contact{}, err
	}
	return contactFromPayload(payload), nil
}

// do executes one API round trip and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return apiError(resp.StatusCode, payload)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError converts an error response into a Go error, mapping 404s onto
// app.ErrNotFound for callers that branch on it.
func apiError(statusCode int, body []byte) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}
	if statusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", app.ErrNotFound, message)
	}
	return fmt.Errorf("api error %d: %s", statusCode, message)
}

// projectFromPayload converts wire data to a domain project.
func projectFromPayload(p common.ProjectPayload) (domain.Project, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}
	return domain.Project{
		ID:        p.ID,
		Name:      p.Name,
		Type:      domain.ProjectType(p.Type),
		CreatedAt: createdAt,
	}, nil
}

// activitiesFromPayloads converts wire rows to domain activities.
func activitiesFromPayloads(payload []common.StepPayload) ([]domain.Activity, error) {
	out := make([]domain.Activity, 0, len(payload))
	for _, p := range payload {
		a, err := p.ToActivity()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// contactFromPayload converts wire data to a domain contact.
func contactFromPayload(p common.ContactPayload) domain.Contact {
	return domain.Contact{
		ID:             p.ID,
		ProjectID:      p.ProjectID,
		Organization:   p.Organization,
		Type:           p.Type,
		Responsibility: p.Responsibility,
		Name:           p.Name,
		Title:          p.Title,
		Email:          p.Email,
		Phone1:         p.Phone1,
		Phone2:         p.Phone2,
	}
}
