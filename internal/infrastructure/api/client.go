package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/docuflow/docuflow/internal/domain/models"
	"github.com/docuflow/docuflow/internal/domain/services"
	"github.com/docuflow/docuflow/pkg/logger"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

var ErrServerError = errors.New("workflow service error")

// Config holds the connection settings for the remote workflow API.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the HTTP client for the remote workflow service. Requests
// carry the session cookie (resty keeps a cookie jar) plus a bearer
// token when one is stored, matching both credential modes the server
// accepts.
type Client struct {
	http   *resty.Client
	tokens services.TokenStore
	log    *logger.Logger
}

// New creates a workflow API client. The timeout bounds every request
// so a hung call can never leave a spinner up forever.
func New(cfg Config, tokens services.TokenStore, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	c := &Client{
		http:   httpClient,
		tokens: tokens,
		log:    log,
	}

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.NewString())
		// Auth endpoints set the token explicitly; everything else uses
		// the stored one.
		if req.Token == "" && c.tokens != nil {
			if token, err := c.tokens.Load(); err == nil && token != "" {
				req.SetAuthToken(token)
			}
		}
		return nil
	})

	return c
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type documentsResponse struct {
	Documents []models.Document `json:"documents"`
}

type usersResponse struct {
	Users []models.User `json:"users"`
}

type sessionResponse struct {
	User models.User `json:"user"`
}

// GetDocuments lists documents matching the server-side filters. Only
// non-empty fields become query parameters.
func (c *Client) GetDocuments(ctx context.Context, query services.DocumentQuery) ([]models.Document, error) {
	params := map[string]string{}
	if query.Department != "" {
		params["department"] = query.Department
	}
	if query.StartDate != "" {
		params["startDate"] = query.StartDate
	}
	if query.EndDate != "" {
		params["endDate"] = query.EndDate
	}
	if query.Status != "" {
		params["status"] = query.Status
	}
	if query.CreatedBy != "" {
		params["createdBy"] = query.CreatedBy
	}

	var out documentsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&out).
		Get("/file/get-documents")
	if err != nil {
		return nil, fmt.Errorf("get documents: %w", err)
	}
	if resp.IsError() {
		return nil, c.serverError(resp)
	}
	return out.Documents, nil
}

// Approve marks the document approved and returns the server message.
func (c *Client) Approve(ctx context.Context, fileUniqueName string) (string, error) {
	return c.postAction(ctx, "/file/approve", map[string]string{
		"fileUniqueName": fileUniqueName,
	})
}

// Reject marks the document rejected with remarks.
func (c *Client) Reject(ctx context.Context, fileUniqueName, remarks string) (string, error) {
	return c.postAction(ctx, "/file/reject", map[string]string{
		"fileUniqueName": fileUniqueName,
		"remarks":        remarks,
	})
}

// RequestCorrection sends the document back for correction with remarks.
func (c *Client) RequestCorrection(ctx context.Context, fileUniqueName, remarks string) (string, error) {
	return c.postAction(ctx, "/file/correction", map[string]string{
		"fileUniqueName": fileUniqueName,
		"remarks":        remarks,
	})
}

func (c *Client) postAction(ctx context.Context, path string, body map[string]string) (string, error) {
	var out messageResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post(path)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", path, err)
	}
	if resp.IsError() {
		return "", c.serverError(resp)
	}
	return out.Message, nil
}

// DownloadPDF streams the document body into w.
func (c *Client) DownloadPDF(ctx context.Context, fileUniqueName string, w io.Writer) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get("/file/download-pdf/" + url.PathEscape(fileUniqueName))
	if err != nil {
		return fmt.Errorf("download pdf: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		raw, _ := io.ReadAll(io.LimitReader(body, 4096))
		return serverErrorFromBody(resp.StatusCode(), raw)
	}
	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("download pdf: %w", err)
	}
	return nil
}

// GetUsers lists the user directory.
func (c *Client) GetUsers(ctx context.Context) ([]models.User, error) {
	var out usersResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/user/get-users")
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	if resp.IsError() {
		return nil, c.serverError(resp)
	}
	return out.Users, nil
}

// Login authenticates and returns the token plus user payload.
func (c *Client) Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error) {
	var out services.LoginResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/auth/login")
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.IsError() {
		return nil, c.serverError(resp)
	}
	return &out, nil
}

// GetSession fetches the user behind an existing token.
func (c *Client) GetSession(ctx context.Context, token string) (*models.User, error) {
	var out sessionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&out).
		Get("/auth/get-session")
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if resp.IsError() {
		return nil, c.serverError(resp)
	}
	return &out.User, nil
}

// Logout ends the remote session.
func (c *Client) Logout(ctx context.Context, token string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Post("/auth/logout")
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if resp.IsError() {
		return c.serverError(resp)
	}
	return nil
}

// serverError surfaces the server-provided message when the error body
// carries one, falling back to the HTTP status.
func (c *Client) serverError(resp *resty.Response) error {
	return serverErrorFromBody(resp.StatusCode(), resp.Body())
}

func serverErrorFromBody(status int, body []byte) error {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return fmt.Errorf("%w: %s", ErrServerError, parsed.Message)
		}
		if parsed.Error != "" {
			return fmt.Errorf("%w: %s", ErrServerError, parsed.Error)
		}
	}
	return fmt.Errorf("%w: unexpected status %d", ErrServerError, status)
}
