package fibo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Purvav0511/cinefibo/internal/domain"
	"github.com/Purvav0511/cinefibo/internal/domain/shotprompt"
	"github.com/Purvav0511/cinefibo/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("fibo: api token is required")

// Options configures the Bria FIBO client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	// PollInterval is the delay between status polls; MaxPolls caps how many
	// status requests one job may issue before giving up.
	PollInterval time.Duration
	MaxPolls     int
	// Sleep waits between polls. Injectable so tests can count delays and
	// run without wall-clock time. Must honor ctx cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Client submits FIBO image-generation jobs and drives them to a terminal
// status over the asynchronous submit-then-poll wire contract.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	logger       *infra.Logger
	pollInterval time.Duration
	maxPolls     int
	sleep        func(ctx context.Context, d time.Duration) error
}

// GenerateRequest captures the inputs for one generation job. At least one of
// Prompt, Structured, or StructuredRaw must be set. StructuredRaw carries an
// already JSON-encoded tree and is forwarded to the wire unchanged.
type GenerateRequest struct {
	Prompt        string
	Structured    shotprompt.Structured
	StructuredRaw string
}

type submitRequest struct {
	NumResults       int    `json:"num_results"`
	Prompt           string `json:"prompt,omitempty"`
	StructuredPrompt string `json:"structured_prompt,omitempty"`
}

type submitResponse struct {
	RequestID string `json:"request_id"`
	StatusURL string `json:"status_url"`
}

type statusResponse struct {
	Status string        `json:"status"`
	Result *statusResult `json:"result"`
}

type statusResult struct {
	ImageURL         string          `json:"image_url"`
	StructuredPrompt json.RawMessage `json:"structured_prompt"`
}

const (
	defaultBaseURL      = "https://engine.prod.bria-api.com/v2"
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultMaxPolls     = 150

	statusCompleted = "COMPLETED"
	statusError     = "ERROR"
)

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	maxPolls := opts.MaxPolls
	if maxPolls <= 0 {
		maxPolls = defaultMaxPolls
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		baseURL:      baseURL,
		httpClient:   httpClient,
		logger:       logger,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
		sleep:        sleep,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Generate submits one job and polls its status endpoint until the job
// reaches a terminal state, the poll budget runs out, or ctx is cancelled.
// Jobs are never retried after a terminal ERROR.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*domain.RenderResult, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	payload, err := buildSubmitPayload(req)
	if err != nil {
		return nil, err
	}
	sub, err := c.submit(ctx, payload)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("request_id", sub.RequestID).
		Str("status_url", sub.StatusURL).
		Msg("fibo: job submitted")
	return c.poll(ctx, sub)
}

func buildSubmitPayload(req GenerateRequest) (*submitRequest, error) {
	prompt := strings.TrimSpace(req.Prompt)
	raw := strings.TrimSpace(req.StructuredRaw)
	if prompt == "" && len(req.Structured) == 0 && raw == "" {
		return nil, fmt.Errorf("fibo: prompt or structured prompt is required: %w", domain.ErrInvalidInput)
	}
	payload := &submitRequest{NumResults: 1, Prompt: prompt}
	switch {
	case raw != "":
		payload.StructuredPrompt = raw
	case len(req.Structured) > 0:
		// The wire contract wants the structured prompt as a JSON string,
		// not a nested object.
		encoded, err := json.Marshal(req.Structured)
		if err != nil {
			return nil, fmt.Errorf("fibo: encode structured prompt: %w", err)
		}
		payload.StructuredPrompt = string(encoded)
	}
	return payload, nil
}

func (c *Client) submit(ctx context.Context, payload *submitRequest) (*submitResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fibo: encode request: %w", err)
	}
	endpoint := c.baseURL + "/image/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fibo: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api_token", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fibo: contact generate endpoint: %v: %w", err, domain.ErrSubmitFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fibo: read submit response: %v: %w", err, domain.ErrSubmitFailed)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fibo: submit status %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(raw)), domain.ErrSubmitFailed)
	}
	var decoded submitResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("fibo: decode submit response: %v: %w", err, domain.ErrSubmitFailed)
	}
	if decoded.RequestID == "" || decoded.StatusURL == "" {
		return nil, fmt.Errorf("fibo: submit response missing request_id or status_url: %s: %w", strings.TrimSpace(string(raw)), domain.ErrSubmitFailed)
	}
	return &decoded, nil
}

// poll drives the status state machine. Every status other than COMPLETED and
// ERROR counts as still running; the first poll happens without delay, each
// subsequent one after a fixed interval.
func (c *Client) poll(ctx context.Context, sub *submitResponse) (*domain.RenderResult, error) {
	for attempt := 1; attempt <= c.maxPolls; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.pollInterval); err != nil {
				return nil, fmt.Errorf("fibo: wait for status: %w", err)
			}
		}
		status, raw, err := c.fetchStatus(ctx, sub.StatusURL)
		if err != nil {
			return nil, err
		}
		switch strings.ToUpper(status.Status) {
		case statusCompleted:
			return c.completedResult(sub.RequestID, status, raw)
		case statusError:
			return nil, fmt.Errorf("fibo: generation error: %s: %w", strings.TrimSpace(string(raw)), domain.ErrGenerationFailed)
		}
		c.logger.Debug().
			Str("request_id", sub.RequestID).
			Str("status", status.Status).
			Int("attempt", attempt).
			Msg("fibo: job still running")
	}
	return nil, fmt.Errorf("fibo: no terminal status after %d polls: %w", c.maxPolls, domain.ErrPollBudgetExceeded)
}

func (c *Client) fetchStatus(ctx context.Context, statusURL string) (*statusResponse, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("fibo: build status request: %w", err)
	}
	httpReq.Header.Set("api_token", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("fibo: contact status endpoint: %v: %w", err, domain.ErrPollFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("fibo: read status response: %v: %w", err, domain.ErrPollFailed)
	}
	if resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("fibo: status %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(raw)), domain.ErrPollFailed)
	}
	var decoded statusResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, nil, fmt.Errorf("fibo: decode status response: %v: %w", err, domain.ErrPollFailed)
	}
	return &decoded, raw, nil
}

func (c *Client) completedResult(requestID string, status *statusResponse, raw []byte) (*domain.RenderResult, error) {
	if status.Result == nil || strings.TrimSpace(status.Result.ImageURL) == "" {
		return nil, fmt.Errorf("fibo: completed without image_url: %s: %w", strings.TrimSpace(string(raw)), domain.ErrNoImageResult)
	}
	structured := c.decodeStructured(requestID, status.Result.StructuredPrompt)
	c.logger.Debug().
		Str("request_id", requestID).
		Str("image_url", status.Result.ImageURL).
		Msg("fibo: generation completed")
	return &domain.RenderResult{
		ImageURL:         status.Result.ImageURL,
		StructuredPrompt: structured,
		RequestID:        requestID,
	}, nil
}

// decodeStructured never fails: a malformed tree degrades to an empty one so
// the image result still reaches the caller.
func (c *Client) decodeStructured(requestID string, raw json.RawMessage) shotprompt.Structured {
	if len(raw) == 0 {
		return shotprompt.Structured{}
	}
	sp, err := shotprompt.Decode(raw)
	if err != nil || sp == nil {
		c.logger.Warn().
			Str("request_id", requestID).
			Err(err).
			Msg("fibo: structured prompt decode failed, keeping empty tree")
		return shotprompt.Structured{}
	}
	return sp
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
