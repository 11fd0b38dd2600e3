package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client defines the calls made against the remote chat-completion API.
// Every call is a single round trip; nothing is retried.
type Client interface {
	Status(ctx context.Context, ep Endpoint) (*StatusResponse, error)
	ListModels(ctx context.Context, ep Endpoint) (*ModelList, error)
	ChatCompletion(ctx context.Context, ep Endpoint, req *ChatRequest) (*ChatResponse, error)
	CreateChat(ctx context.Context, ep Endpoint, model, name string) (*CreateChatResponse, error)
}

type apiClient struct {
	client *http.Client
}

// NewClient returns a Client using the given http.Client. A nil client means
// NewHTTPClient(0).
func NewClient(client *http.Client) Client {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &apiClient{client: client}
}

// NewHTTPClient builds the http.Client used for API calls. A zero timeout
// waits for the server indefinitely.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func (c *apiClient) Status(ctx context.Context, ep Endpoint) (*StatusResponse, error) {
	var fields map[string]any
	if err := c.do(ctx, "status", http.MethodGet, ep, "/status", nil, &fields); err != nil {
		return nil, err
	}
	resp := &StatusResponse{Fields: fields}
	if v, ok := fields["authenticated"].(bool); ok {
		resp.Authenticated = &v
	}
	return resp, nil
}

func (c *apiClient) ListModels(ctx context.Context, ep Endpoint) (*ModelList, error) {
	var list ModelList
	if err := c.do(ctx, "list models", http.MethodGet, ep, "/models", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *apiClient) ChatCompletion(ctx context.Context, ep Endpoint, req *ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.do(ctx, "chat completion", http.MethodPost, ep, "/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) CreateChat(ctx context.Context, ep Endpoint, model, name string) (*CreateChatResponse, error) {
	var resp CreateChatResponse
	body := &CreateChatRequest{Model: model, Name: name}
	if err := c.do(ctx, "create chat", http.MethodPost, ep, "/chats", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do performs one request and decodes a 200 response into out. Failures come
// back as *TransportError, *StatusError or *DecodeError.
func (c *apiClient) do(ctx context.Context, op, method string, ep Endpoint, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: could not marshal request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	url := ep.URL(path)
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("could not create http request: %w", err)}
	}
	httpReq.Header = ep.Headers()

	slog.Debug("Sending API request", "op", op, "method", method, "url", url)
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() {
		if bErr := resp.Body.Close(); bErr != nil {
			slog.Warn("Failed to close API response body", "op", op, "error", bErr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("could not read response body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Op: op, Body: string(respBody), Err: err}
	}
	return nil
}
