package fibo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Purvav0511/cinefibo/internal/domain"
	"github.com/Purvav0511/cinefibo/internal/domain/shotprompt"
)

func TestGenerateRequiresInput(t *testing.T) {
	transport := &fakeTransport{}
	client := newTestClient(t, transport, nil, Options{})

	_, err := client.Generate(context.Background(), GenerateRequest{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if transport.posts != 0 || transport.gets != 0 {
		t.Fatalf("http calls = %d posts %d gets, want none", transport.posts, transport.gets)
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	client, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a shot"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestGeneratePollsUntilCompleted(t *testing.T) {
	transport := &fakeTransport{
		submit: jsonStub(http.StatusOK, map[string]any{
			"request_id": "req-42",
			"status_url": "https://api.test/v2/status/req-42",
		}),
		statuses: []responseStub{
			jsonStub(http.StatusOK, map[string]any{"status": "IN_PROGRESS"}),
			jsonStub(http.StatusOK, map[string]any{"status": "IN_PROGRESS"}),
			jsonStub(http.StatusOK, map[string]any{
				"status": "COMPLETED",
				"result": map[string]any{
					"image_url":         "https://cdn.test/out.png",
					"structured_prompt": map[string]any{"short_description": "a quiet kitchen"},
				},
			}),
		},
	}
	sleeper := &sleepRecorder{}
	client := newTestClient(t, transport, sleeper, Options{PollInterval: 250 * time.Millisecond})

	result, err := client.Generate(context.Background(), GenerateRequest{
		Prompt:     "warm kitchen at dawn",
		Structured: shotprompt.Structured{"short_description": "a quiet kitchen"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.ImageURL != "https://cdn.test/out.png" {
		t.Fatalf("image url = %q, want %q", result.ImageURL, "https://cdn.test/out.png")
	}
	if result.RequestID != "req-42" {
		t.Fatalf("request id = %q, want req-42", result.RequestID)
	}
	if got := result.StructuredPrompt["short_description"]; got != "a quiet kitchen" {
		t.Fatalf("structured short_description = %v, want %q", got, "a quiet kitchen")
	}
	if transport.posts != 1 {
		t.Fatalf("posts = %d, want 1", transport.posts)
	}
	if transport.gets != 3 {
		t.Fatalf("gets = %d, want 3", transport.gets)
	}
	if len(sleeper.calls) != 2 {
		t.Fatalf("sleeps = %d, want 2", len(sleeper.calls))
	}
	for _, d := range sleeper.calls {
		if d != 250*time.Millisecond {
			t.Fatalf("sleep duration = %v, want 250ms", d)
		}
	}

	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if n := payload["num_results"]; n != float64(1) {
		t.Fatalf("num_results = %v, want 1", n)
	}
	if p := payload["prompt"]; p != "warm kitchen at dawn" {
		t.Fatalf("prompt = %v, want %q", p, "warm kitchen at dawn")
	}
	encoded, ok := payload["structured_prompt"].(string)
	if !ok {
		t.Fatalf("structured_prompt should be a JSON string, got %T", payload["structured_prompt"])
	}
	var tree map[string]any
	if err := json.Unmarshal([]byte(encoded), &tree); err != nil {
		t.Fatalf("structured_prompt string is not valid JSON: %v", err)
	}
	if tree["short_description"] != "a quiet kitchen" {
		t.Fatalf("encoded tree = %v", tree)
	}
	if token := transport.lastHeader.Get("api_token"); token != "test-token" {
		t.Fatalf("api_token header = %q, want test-token", token)
	}
	if ct := transport.lastHeader.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q, want application/json", ct)
	}
}

func TestGenerateStatusIsCaseInsensitive(t *testing.T) {
	transport := &fakeTransport{
		submit: submitStub(),
		statuses: []responseStub{
			jsonStub(http.StatusOK, map[string]any{
				"status": "completed",
				"result": map[string]any{"image_url": "https://cdn.test/out.png"},
			}),
		},
	}
	client := newTestClient(t, transport, &sleepRecorder{}, Options{})

	result, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a shot"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.ImageURL != "https://cdn.test/out.png" {
		t.Fatalf("image url = %q", result.ImageURL)
	}
}

func TestGenerateTerminalError(t *testing.T) {
	transport := &fakeTransport{
		submit: submitStub(),
		statuses: []responseStub{
			jsonStub(http.StatusOK, map[string]any{"status": "ERROR", "error": "content policy"}),
		},
	}
	sleeper := &sleepRecorder{}
	client := newTestClient(t, transport, sleeper, Options{})

	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a shot"})
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	if !strings.Contains(err.Error(), "content policy") {
		t.Fatalf("error should carry the status payload, got %v", err)
	}
	if len(sleeper.calls) != 0 {
		t.Fatalf("sleeps = %d, want 0 before the first poll", len(sleeper.calls))
	}
	if transport.gets != 1 {
		t.Fatalf("gets = %d, want 1", transport.gets)
	}
}

func TestGenerateDecodeFailureKeepsImage(t *testing.T) {
	transport := &fakeTransport{
		submit: submitStub(),
		statuses: []responseStub{
			jsonStub(http.StatusOK, map[string]any{
				"status": "COMPLETED",
				"result": map[string]any{
					"image_url":         "https://cdn.test/out.png",
					"structured_prompt": "not a json tree",
				},
			}),
		},
	}
	client := newTestClient(t, transport, &sleepRecorder{}, Options{})

	result, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a shot"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.ImageURL != "https://cdn.test/out.png" {
		t.Fatalf("image url = %q", result.ImageURL)
	}
	if result.StructuredPrompt == nil || len(result.StructuredPrompt) != 0 {
		t.Fatalf("structured prompt = %v, want empty tree", result.StructuredPrompt)
	}
}

func TestGenerateDecodesStringWrappedTree(t *testing.T) {
	transport := &fakeTransport{
		submit: submitStub(),
		statuses: []responseStub{
			jsonStub(http.StatusOK, map[string]any{
				"status": "COMPLETED",
				"result": map[string]any{
					"image_url":         "https://cdn.test/out.png",
					"structured_prompt": `{"aesthetics":{"mood_atmosphere":"serene"}}`,
				},
			}),
		},
	}
	client := newTestClient(t, transport, &sleepRecorder{}, Options{})

	result, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a shot"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	aesthetics, ok := result.StructuredPrompt["aesthetics"].(map[string]any)
	if !ok {
		t.Fatalf("aesthetics group missing: %v", result.StructuredPrompt)
	}
	if aesthetics["mood_atmosphere"] != "serene" {
		t.Fatalf("mood = %v, want serene", aesthetics["mood_atmosphere"])
	}
}

func TestGenerateCompletedWithoutImageURL(t *testing.T) {
	transport := &fakeTransport{
		submit: submitStub(),
		statuses: []responseStub{
			jsonStub(http.StatusOK, map[string]any{"status": "COMPLETED", "result": map[string]any{}}),
		},
	}
	client := newTestClient(t, transport, &sleepRecorder{}, Options{})

	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a shot"})
	if !errors.Is(err, domain.ErrNoImageResult) {
		t.Fatalf("err = %v, want ErrNoImageResult", err)
	}
}

func TestGenerateSubmitMissingStatusURL(t *testing.T) {
	transport := &fakeTransport{
		submit: jsonStub(http.StatusOK, map[string]any{"request_id": "req-1"}),
	}
	client := newTestClient(t, transport, &sleepRecorder{}, Options{})

	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a shot"})
	if !errors.Is(err, domain.ErrSubmitFailed) {
		t.Fatalf("err = %v, want ErrSubmitFailed", err)
	}
	if transport.gets != 0 {
		t.Fatalf("gets = %d, want 0", transport.gets)
	}
}

func TestGenerateSubmitServerError(t *testing.T) {
	transport := &fakeTransport{
		submit: jsonStub(http.StatusInternalServerError, map[string]any{"detail": "boom"}),
	}
	client := newTestClient(t, transport, &sleepRecorder{}, Options{})

	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a shot"})
	if !errors.Is(err, domain.ErrSubmitFailed) {
		t.Fatalf("err = %v, want ErrSubmitFailed", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Fatalf("error should carry the status code, got %v", err)
	}
}

func TestGeneratePollServerError(t *testing.T) {
	transport := &fakeTransport{
		submit: submitStub(),
		statuses: []responseStub{
			jsonStub(http.StatusBadGateway, map[string]any{"detail": "upstream down"}),
		},
	}
	client := newTestClient(t, transport, &sleepRecorder{}, Options{})

	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a shot"})
	if !errors.Is(err, domain.ErrPollFailed) {
		t.Fatalf("err = %v, want ErrPollFailed", err)
	}
}

func TestGeneratePollBudgetExceeded(t *testing.T) {
	transport := &fakeTransport{
		submit: submitStub(),
		statuses: []responseStub{
			jsonStub(http.StatusOK, map[string]any{"status": "IN_PROGRESS"}),
			jsonStub(http.StatusOK, map[string]any{"status": "IN_PROGRESS"}),
			jsonStub(http.StatusOK, map[string]any{"status": "IN_PROGRESS"}),
		},
	}
	sleeper := &sleepRecorder{}
	client := newTestClient(t, transport, sleeper, Options{MaxPolls: 3})

	_, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a shot"})
	if !errors.Is(err, domain.ErrPollBudgetExceeded) {
		t.Fatalf("err = %v, want ErrPollBudgetExceeded", err)
	}
	if transport.gets != 3 {
		t.Fatalf("gets = %d, want 3", transport.gets)
	}
	if len(sleeper.calls) != 2 {
		t.Fatalf("sleeps = %d, want 2", len(sleeper.calls))
	}
}

func TestGenerateForwardsRawStructuredPrompt(t *testing.T) {
	raw := `{"short_description":"verbatim tree","custom_block":{"k":1}}`
	transport := &fakeTransport{
		submit: submitStub(),
		statuses: []responseStub{
			jsonStub(http.StatusOK, map[string]any{
				"status": "COMPLETED",
				"result": map[string]any{"image_url": "https://cdn.test/out.png"},
			}),
		},
	}
	client := newTestClient(t, transport, &sleepRecorder{}, Options{})

	if _, err := client.Generate(context.Background(), GenerateRequest{StructuredRaw: raw}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got := payload["structured_prompt"]; got != raw {
		t.Fatalf("structured_prompt = %q, want raw string forwarded unchanged", got)
	}
	if _, ok := payload["prompt"]; ok {
		t.Fatalf("prompt should be omitted when empty")
	}
}

func TestGenerateStopsWhenContextCancelled(t *testing.T) {
	transport := &fakeTransport{
		submit: submitStub(),
		statuses: []responseStub{
			jsonStub(http.StatusOK, map[string]any{"status": "IN_PROGRESS"}),
			jsonStub(http.StatusOK, map[string]any{"status": "IN_PROGRESS"}),
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	sleep := func(sleepCtx context.Context, d time.Duration) error {
		cancel()
		return sleepCtx.Err()
	}
	client := newTestClient(t, transport, nil, Options{Sleep: sleep})

	_, err := client.Generate(ctx, GenerateRequest{Prompt: "a shot"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if transport.gets != 1 {
		t.Fatalf("gets = %d, want 1 before cancellation", transport.gets)
	}
}

func newTestClient(t *testing.T, transport *fakeTransport, sleeper *sleepRecorder, opts Options) *Client {
	t.Helper()
	opts.APIKey = "test-token"
	opts.BaseURL = "https://api.test/v2"
	opts.HTTPClient = &http.Client{Transport: transport}
	if opts.Sleep == nil && sleeper != nil {
		opts.Sleep = sleeper.sleep
	}
	client, err := NewClient(opts)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func submitStub() responseStub {
	return jsonStub(http.StatusOK, map[string]any{
		"request_id": "req-1",
		"status_url": "https://api.test/v2/status/req-1",
	})
}

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

type fakeTransport struct {
	submit     responseStub
	statuses   []responseStub
	lastBody   []byte
	lastHeader http.Header
	posts      int
	gets       int
}

type responseStub struct {
	status int
	body   []byte
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	switch req.Method {
	case http.MethodPost:
		f.posts++
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		f.lastBody = body
		f.lastHeader = req.Header.Clone()
		return f.submit.toResponse(), nil
	case http.MethodGet:
		f.gets++
		if len(f.statuses) == 0 {
			return responseStub{status: http.StatusNotFound, body: []byte("no status queued")}.toResponse(), nil
		}
		next := f.statuses[0]
		f.statuses = f.statuses[1:]
		return next.toResponse(), nil
	}
	return &http.Response{
		StatusCode: http.StatusMethodNotAllowed,
		Body:       io.NopCloser(strings.NewReader("unexpected method")),
	}, nil
}

func jsonStub(status int, payload any) responseStub {
	body, _ := json.Marshal(payload)
	return responseStub{status: status, body: body}
}

func (s responseStub) toResponse() *http.Response {
	return &http.Response{
		StatusCode: s.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(s.body)),
	}
}
