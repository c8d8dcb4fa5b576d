package collaborators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/weftlabs/weft/pkg/actions"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPCaller performs outbound HTTP for workflows with a shared client. It
// implements both actions.APICaller and actions.WebhookSender.
type HTTPCaller struct {
	client *http.Client
	logger *slog.Logger
}

func NewHTTPCaller(logger *slog.Logger) *HTTPCaller {
	return &HTTPCaller{
		client: &http.Client{Timeout: defaultHTTPTimeout},
		logger: logger.With("module", "http_caller"),
	}
}

// CallAPI performs the request and returns the response with its body decoded
// as JSON when possible, as a string otherwise.
func (c *HTTPCaller) CallAPI(ctx context.Context, request actions.APIRequest) (*actions.APIResponse, error) {
	method := strings.ToUpper(request.Method)
	if method == "" {
		method = http.MethodGet
	}

	req, err := c.buildRequest(ctx, method, request.URL, request.Headers, request.Body)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.DebugContext(ctx, "API call completed",
		"method", method, "url", request.URL, "status_code", resp.StatusCode)

	response := &actions.APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeader(resp.Header),
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err == nil {
		response.Body = decoded
	} else if len(raw) > 0 {
		response.Body = string(raw)
	}

	return response, nil
}

// SendWebhook delivers the payload as JSON and reports the response status.
func (c *HTTPCaller) SendWebhook(ctx context.Context, webhook actions.Webhook) (int, error) {
	method := strings.ToUpper(webhook.Method)
	if method == "" {
		method = http.MethodPost
	}

	var body any
	if webhook.Payload != nil {
		body = webhook.Payload
	}

	req, err := c.buildRequest(ctx, method, webhook.URL, webhook.Headers, body)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("deliver webhook: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.DebugContext(ctx, "Webhook delivered",
		"method", method, "url", webhook.URL, "status_code", resp.StatusCode)

	return resp.StatusCode, nil
}

// buildRequest encodes the body and sets headers. String bodies are sent
// verbatim since templated configs often carry pre-rendered JSON.
func (c *HTTPCaller) buildRequest(ctx context.Context, method, url string, headers map[string]string, body any) (*http.Request, error) {
	var reader io.Reader

	switch value := body.(type) {
	case nil:
	case string:
		if value != "" {
			reader = strings.NewReader(value)
		}
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}

		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if reader != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func flattenHeader(header http.Header) map[string]string {
	flat := make(map[string]string, len(header))
	for key := range header {
		flat[key] = header.Get(key)
	}

	return flat
}
