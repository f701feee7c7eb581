package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/scaffoldlab/scaffold-backend/internal/logger"
)

// AssignmentPart is one entry of a Perusall assignment's ordered part
// list: a document plus an optional page range.
type AssignmentPart struct {
	DocumentID string `json:"documentId"`
	StartPage  *int   `json:"startPage,omitempty"`
	EndPage    *int   `json:"endPage,omitempty"`
}

// ExternalAssignment is the authoritative source a session's reading rows
// are projected from. DocumentIDs is the unordered fallback used when the
// assignment carries no part list at all.
type ExternalAssignment struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Parts       []AssignmentPart `json:"parts"`
	DocumentIDs []string         `json:"documentIds"`
}

type ExternalAssignmentSource interface {
	GetAssignment(ctx context.Context, courseID string, assignmentID string) (*ExternalAssignment, error)
}

// PerusallConfig is resolved at startup; credentials are never read from
// env inside a request.
type PerusallConfig struct {
	BaseURL        string // default https://app.perusall.com/api/v1
	Institution    string // required
	APIToken       string // required
	TimeoutSeconds int    // default 30
}

type perusallClient struct {
	log        *logger.Logger
	baseURL    string
	inst       string
	token      string
	httpClient *http.Client
}

func NewPerusallClient(log *logger.Logger, cfg PerusallConfig) (ExternalAssignmentSource, error) {
	if cfg.Institution == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("missing Perusall credentials")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://app.perusall.com/api/v1"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	return &perusallClient{
		log:        log.With("service", "PerusallClient"),
		baseURL:    cfg.BaseURL,
		inst:       cfg.Institution,
		token:      cfg.APIToken,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}, nil
}

func (c *perusallClient) GetAssignment(ctx context.Context, courseID string, assignmentID string) (*ExternalAssignment, error) {
	path := fmt.Sprintf("%s/courses/%s/assignments/%s", c.baseURL, url.PathEscape(courseID), url.PathEscape(assignmentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Institution", c.inst)
	req.Header.Set("X-API-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perusall request: %w", err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("perusall http %d: %s", resp.StatusCode, string(raw))
	}

	var assignment ExternalAssignment
	if err := json.Unmarshal(raw, &assignment); err != nil {
		return nil, fmt.Errorf("decode perusall assignment: %w", err)
	}
	return &assignment, nil
}
