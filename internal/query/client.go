package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client implementa Service contra el QueryService real via HTTP.
type Client struct {
	baseURL    string
	askPath    string
	healthPath string
	client     *http.Client
	tokenFn    func() string
}

// NewClient construye un cliente apuntando al QueryService configurado.
func NewClient(baseURL, askPath, healthPath string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if askPath == "" {
		askPath = "/ask"
	}
	if healthPath == "" {
		healthPath = "/health"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		askPath:    askPath,
		healthPath: healthPath,
		client:     httpClient,
	}
}

// NewAuthClient construye un cliente que ademas adjunta un bearer token por
// request. Lo usa el lado cliente cuando pregunta a traves del gateway.
func NewAuthClient(baseURL, askPath, healthPath string, httpClient *http.Client, tokenFn func() string) *Client {
	c := NewClient(baseURL, askPath, healthPath, httpClient)
	c.tokenFn = tokenFn
	return c
}

type askRequest struct {
	Query   string `json:"query"`
	Context string `json:"context,omitempty"`
}

func (c *Client) Ask(ctx context.Context, question, contextHint string) (Answer, error) {
	bodyBytes, err := json.Marshal(askRequest{Query: question, Context: contextHint})
	if err != nil {
		return Answer{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.askPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return Answer{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokenFn != nil {
		if token := c.tokenFn(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Answer{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Answer{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Answer{}, fmt.Errorf("query http error: status=%d", resp.StatusCode)
	}

	var answer Answer
	if err := json.Unmarshal(respBody, &answer); err != nil {
		return Answer{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if answer.Text == "" {
		return Answer{}, fmt.Errorf("query empty answer")
	}
	return answer, nil
}

func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.healthPath, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
