// Package apiclient is a typed client of the REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"FIN-COACH/internal/forms"
	"FIN-COACH/internal/models"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Problems   []forms.FieldProblem
}

func (e *APIError) Error() string {
	if len(e.Problems) > 0 {
		parts := make([]string, 0, len(e.Problems))
		for _, p := range e.Problems {
			parts = append(parts, p.Path+" "+p.Message)
		}
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// WithHTTPClient replaces the default client, which times out after 60s.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var env envelope
	if json.Unmarshal(body, &env) != nil {
		return apiErr
	}
	if env.Message != "" {
		apiErr.Message = env.Message
	}
	if resp.StatusCode == http.StatusUnprocessableEntity && len(env.Data) > 0 {
		json.Unmarshal(env.Data, &apiErr.Problems)
	}
	return apiErr
}

// call performs a JSON request and decodes the envelope data into out.
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// Login stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var result struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	err := c.call(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, &result)
	if err != nil {
		return nil, err
	}
	c.token = result.Token
	return result.User, nil
}

func (c *Client) FormConfig(ctx context.Context, id string) (*models.FormConfiguration, error) {
	var cfg models.FormConfiguration
	if err := c.call(ctx, http.MethodGet, "/api/v1/form-configs/"+url.PathEscape(id), nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) FormConfigs(ctx context.Context) ([]models.FormConfiguration, error) {
	var configs []models.FormConfiguration
	if err := c.call(ctx, http.MethodGet, "/api/v1/form-configs", nil, &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

// LoadSubmission returns the caller's draft of a configuration, or a new
// prefilled submission with an empty id.
func (c *Client) LoadSubmission(ctx context.Context, configID string) (*models.FormSubmission, error) {
	var result struct {
		Submission *models.FormSubmission `json:"submission"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/form-configs/"+url.PathEscape(configID)+"/submission", nil, &result); err != nil {
		return nil, err
	}
	return result.Submission, nil
}

func (c *Client) Submission(ctx context.Context, id string) (*models.FormSubmission, error) {
	var sub models.FormSubmission
	if err := c.call(ctx, http.MethodGet, "/api/v1/submissions/"+url.PathEscape(id), nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

type SaveRequest struct {
	ID           string                 `json:"id,omitempty"`
	FormConfigID string                 `json:"form_config_id"`
	FormData     map[string]interface{} `json:"form_data"`
}

type SubmitResult struct {
	Submission *models.FormSubmission `json:"submission"`
	NextStep   string                 `json:"next_step"`
}

func (c *Client) SaveDraft(ctx context.Context, req SaveRequest) (*models.FormSubmission, error) {
	var sub models.FormSubmission
	if err := c.call(ctx, http.MethodPost, "/api/v1/submissions/draft", req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *Client) Submit(ctx context.Context, req SaveRequest) (*SubmitResult, error) {
	var result SubmitResult
	if err := c.call(ctx, http.MethodPost, "/api/v1/submissions/submit", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExportPDF downloads the PDF export of a submission. language may be
// empty to use the owner's language.
func (c *Client) ExportPDF(ctx context.Context, submissionID, language string) ([]byte, string, error) {
	path := "/api/v1/submissions/" + url.PathEscape(submissionID) + "/export"
	if language != "" {
		path += "?lang=" + url.QueryEscape(language)
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read export: %w", err)
	}
	filename := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return pdf, filename, nil
}
