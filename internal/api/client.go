// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the TagWise backend.
//
// All endpoints speak JSON; the ask endpoint can additionally stream
// its response as newline-delimited JSON. The backend uses cookie-based
// sessions with Django-style CSRF protection: the csrftoken cookie is
// echoed back as the X-CSRFToken header on every mutating request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/tagwise-tui/internal/model"
)

// Configuration constants for the TagWise API.
const (
	// DefaultBaseURL is where a local TagWise instance listens.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the default timeout for non-streaming requests.
	DefaultTimeout = 30 * time.Second

	// csrfCookieName is the cookie Django stores the CSRF token in.
	csrfCookieName = "csrftoken"

	// csrfHeaderName is the header the token is echoed back on.
	csrfHeaderName = "X-CSRFToken"

	// sessionCookieName marks an authenticated session.
	sessionCookieName = "sessionid"

	// requestsPerSecond bounds bursts of list/rename traffic so rapid UI
	// actions cannot hammer the backend.
	requestsPerSecond = 10
)

// Endpoint paths, relative to the base URL.
const (
	pathInit          = "/api/chatbot/init/"
	pathAsk           = "/api/chatbot/ask/"
	pathReset         = "/api/chatbot/reset/"
	pathConversations = "/api/chatbot/conversations/"
	pathLogin         = "/accounts/login/"
)

// Error variables for common API failures.
var (
	// ErrNotAuthenticated indicates the session cookie is missing or
	// expired.
	ErrNotAuthenticated = errors.New("not authenticated with TagWise")

	// ErrStreamingUnsupported indicates the server answered an ask
	// request with a non-NDJSON body.
	ErrStreamingUnsupported = errors.New("server does not support streaming responses")
)

// APIError represents an error response from the TagWise backend.
type APIError struct {
	StatusCode int
	Status     string // "error" or "warning" from the JSON envelope
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tagwise API error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tagwise API error (HTTP %d)", e.StatusCode)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// statusResponse is the common {status, message} envelope.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// InitResult is the outcome of backend initialization.
type InitResult struct {
	Status  string // "success", "warning" or "error"
	Message string
}

// ConversationInfo is one entry of the authoritative conversation list.
type ConversationInfo struct {
	ID    model.FlexID `json:"id"`
	Title string       `json:"title"`
}

// ConversationDetail is a full conversation as returned by the get
// endpoint.
type ConversationDetail struct {
	Title    string        `json:"title"`
	Messages []WireMessage `json:"messages"`
}

// WireMessage is one message in a conversation detail response.
type WireMessage struct {
	IsUser  bool   `json:"is_user"`
	Content string `json:"content"`
}

// AskRequest is the body of an ask call.
type AskRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	GenerateTitle  bool   `json:"generate_title"`
	Stream         bool   `json:"stream"`
}

// AskResponse is the non-streaming ask result.
type AskResponse struct {
	Status            string         `json:"status"`
	Message           string         `json:"message"`
	Sources           []model.Source `json:"sources,omitempty"`
	ConversationID    model.FlexID   `json:"conversation_id,omitempty"`
	ConversationTitle string         `json:"conversation_title,omitempty"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one TagWise instance. It is safe for use from a
// single goroutine at a time, which is all the session layer allows.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// streamClient has no overall timeout; streaming responses are
	// open-ended and bounded by context instead.
	streamClient *http.Client
	jar          http.CookieJar
	limiter      *rate.Limiter
	cookieStore  *CookieStore
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Jar: jar, Timeout: DefaultTimeout},
		streamClient: &http.Client{Jar: jar},
		jar:          jar,
		limiter:      rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}, nil
}

// WithTimeout sets the timeout for non-streaming requests.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.httpClient.Timeout = d
	return c
}

// WithCookieStore attaches a persistent cookie store. Previously saved
// cookies are loaded into the jar immediately.
func (c *Client) WithCookieStore(store *CookieStore) *Client {
	c.cookieStore = store
	if store != nil {
		if cookies, err := store.Load(); err == nil && len(cookies) > 0 {
			c.jar.SetCookies(c.base(), cookies)
		}
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// base returns the parsed base URL. The URL was validated in NewClient.
func (c *Client) base() *url.URL {
	u, _ := url.Parse(c.baseURL)
	return u
}

// PersistCookies saves the current session cookies, if a store is
// attached.
func (c *Client) PersistCookies() error {
	if c.cookieStore == nil {
		return nil
	}
	return c.cookieStore.Save(c.jar.Cookies(c.base()))
}

// IsAuthenticated reports whether a session cookie is present.
func (c *Client) IsAuthenticated() bool {
	for _, cookie := range c.jar.Cookies(c.base()) {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			return true
		}
	}
	return false
}

// =============================================================================
// CSRF HANDLING
// =============================================================================

// csrfToken returns the current CSRF token from the cookie jar, or "".
func (c *Client) csrfToken() string {
	for _, cookie := range c.jar.Cookies(c.base()) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

// ensureCSRF makes sure a CSRF token is present before a mutating
// request, priming the jar with a cheap GET when necessary.
func (c *Client) ensureCSRF(ctx context.Context) string {
	if token := c.csrfToken(); token != "" {
		return token
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathConversations, nil)
	if err != nil {
		return ""
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ""
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return c.csrfToken()
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// newRequest builds a JSON request with the standard headers attached.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		if token := c.ensureCSRF(ctx); token != "" {
			req.Header.Set(csrfHeaderName, token)
		}
	}

	return req, nil
}

// doJSON performs a request and decodes the JSON response into out
// (which may be nil). Non-2xx statuses and {status: "error"} envelopes
// become errors.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrNotAuthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError extracts the error envelope from a failed response.
func decodeAPIError(statusCode int, data []byte) error {
	var envelope statusResponse
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Message != "" {
		return &APIError{StatusCode: statusCode, Status: envelope.Status, Message: envelope.Message}
	}
	return &APIError{StatusCode: statusCode}
}

// =============================================================================
// CHATBOT ENDPOINTS
// =============================================================================

// InitChatbot prepares server-side state (indexing the user's bookmarks
// for retrieval). Idempotent on the server.
func (c *Client) InitChatbot(ctx context.Context) (InitResult, error) {
	var resp statusResponse
	if err := c.doJSON(ctx, http.MethodGet, pathInit, nil, &resp); err != nil {
		return InitResult{}, err
	}
	return InitResult{Status: resp.Status, Message: resp.Message}, nil
}

// Ask sends a question and returns the raw NDJSON stream body. The
// caller owns the returned body and must close it.
func (c *Client) Ask(ctx context.Context, req AskRequest) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req.Stream = true
	httpReq, err := c.newRequest(ctx, http.MethodPost, pathAsk, req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ask request: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		return nil, ErrNotAuthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, decodeAPIError(resp.StatusCode, data)
	}

	return resp.Body, nil
}

// AskSync sends a question on the non-streaming path and returns the
// complete answer in one shot.
func (c *Client) AskSync(ctx context.Context, req AskRequest) (AskResponse, error) {
	req.Stream = false

	var resp AskResponse
	if err := c.doJSON(ctx, http.MethodPost, pathAsk, req, &resp); err != nil {
		return AskResponse{}, err
	}
	if resp.Status == "error" {
		return AskResponse{}, &APIError{StatusCode: http.StatusOK, Status: resp.Status, Message: resp.Message}
	}
	return resp, nil
}

// ResetChat clears server-side conversation state for the active
// exchange.
func (c *Client) ResetChat(ctx context.Context) error {
	var resp statusResponse
	if err := c.doJSON(ctx, http.MethodPost, pathReset, nil, &resp); err != nil {
		return err
	}
	if resp.Status == "error" {
		return &APIError{StatusCode: http.StatusOK, Status: resp.Status, Message: resp.Message}
	}
	return nil
}

// =============================================================================
// CONVERSATION ENDPOINTS
// =============================================================================

// ListConversations returns the authoritative conversation list.
func (c *Client) ListConversations(ctx context.Context) ([]ConversationInfo, error) {
	var resp struct {
		Status        string             `json:"status"`
		Conversations []ConversationInfo `json:"conversations"`
	}
	if err := c.doJSON(ctx, http.MethodGet, pathConversations, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// GetConversation fetches the full message history of one conversation.
func (c *Client) GetConversation(ctx context.Context, id string) (ConversationDetail, error) {
	var resp struct {
		Status       string             `json:"status"`
		Conversation ConversationDetail `json:"conversation"`
	}
	path := pathConversations + url.PathEscape(id) + "/"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return ConversationDetail{}, err
	}
	return resp.Conversation, nil
}

// CreateConversation creates a new empty conversation.
func (c *Client) CreateConversation(ctx context.Context) (ConversationInfo, error) {
	var resp struct {
		Status       string           `json:"status"`
		Conversation ConversationInfo `json:"conversation"`
	}
	if err := c.doJSON(ctx, http.MethodPost, pathConversations+"new/", nil, &resp); err != nil {
		return ConversationInfo{}, err
	}
	if resp.Conversation.ID.IsZero() {
		return ConversationInfo{}, &APIError{StatusCode: http.StatusOK, Message: "server returned no conversation id"}
	}
	return resp.Conversation, nil
}

// DeleteConversation removes a conversation.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	path := pathConversations + url.PathEscape(id) + "/delete/"
	var resp statusResponse
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return err
	}
	if resp.Status == "error" {
		return &APIError{StatusCode: http.StatusOK, Status: resp.Status, Message: resp.Message}
	}
	return nil
}

// RenameConversation sets a new title on a conversation.
func (c *Client) RenameConversation(ctx context.Context, id, title string) error {
	path := pathConversations + url.PathEscape(id) + "/rename/"
	body := map[string]string{"title": title}
	var resp statusResponse
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return err
	}
	if resp.Status == "error" {
		return &APIError{StatusCode: http.StatusOK, Status: resp.Status, Message: resp.Message}
	}
	return nil
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Login establishes a session by posting the Django login form. Only
// the transport is handled here; TagWise owns all account logic.
func (c *Client) Login(ctx context.Context, username, password string) error {
	token := c.ensureCSRFFromLoginPage(ctx)

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	if token != "" {
		form.Set("csrfmiddlewaretoken", token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathLogin, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.baseURL+pathLogin)
	if token != "" {
		req.Header.Set(csrfHeaderName, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return c.PersistCookies()
}

// ensureCSRFFromLoginPage primes the CSRF cookie via the login page,
// which is reachable without a session.
func (c *Client) ensureCSRFFromLoginPage(ctx context.Context) string {
	if token := c.csrfToken(); token != "" {
		return token
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathLogin, nil)
	if err != nil {
		return ""
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ""
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return c.csrfToken()
}
