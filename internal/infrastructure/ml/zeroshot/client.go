package zeroshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docvault-ai/docvault/internal/core/domain"
	"github.com/docvault-ai/docvault/internal/infrastructure/resilience"
)

// Labels is the fixed classification taxonomy. "other" is the refusal
// bucket when nothing scores convincingly.
var Labels = []string{
	"invoice",
	"contract",
	"report",
	"letter",
	"form",
	"receipt",
	"memo",
	"other",
}

const maxClassifyChars = 4000

// Client calls an external zero-shot classification service. When the
// service is unreachable or the breaker is open the keyword fallback
// takes over, so processing never stalls on the model.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
	fallback   *KeywordClassifier
}

type Options struct {
	Timeout            time.Duration
	HTTPClient         *http.Client
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, model string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
		executor:   options.ResilienceExecutor,
		fallback:   NewKeywordClassifier(),
	}
}

type classifyRequest struct {
	Model      string   `json:"model"`
	Text       string   `json:"text"`
	Candidates []string `json:"candidate_labels"`
}

type classifyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

func (c *Client) Classify(ctx context.Context, text string) (string, float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "other", 0, nil
	}
	if len(trimmed) > maxClassifyChars {
		trimmed = trimmed[:maxClassifyChars]
	}

	if c.baseURL == "" {
		return c.fallback.Classify(ctx, trimmed)
	}

	var label string
	var confidence float64
	call := func(callCtx context.Context) error {
		var err error
		label, confidence, err = c.classifyRemote(callCtx, trimmed)
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "classifier.classify", call, classifyTransportError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return c.fallback.Classify(ctx, trimmed)
	}
	return label, confidence, nil
}

func (c *Client) classifyRemote(ctx context.Context, text string) (string, float64, error) {
	body, err := json.Marshal(classifyRequest{
		Model:      c.model,
		Text:       text,
		Candidates: Labels,
	})
	if err != nil {
		return "", 0, fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, domain.WrapError(domain.ErrTemporary, "classifier request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", 0, domain.WrapError(domain.ErrTemporary, "classifier request",
			fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("classifier status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", 0, fmt.Errorf("read classify response: %w", err)
	}

	var parsed classifyResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", 0, fmt.Errorf("decode classify response: %w", err)
	}
	if len(parsed.Labels) == 0 || len(parsed.Labels) != len(parsed.Scores) {
		return "", 0, fmt.Errorf("classifier returned %d labels and %d scores", len(parsed.Labels), len(parsed.Scores))
	}

	best := 0
	for i := range parsed.Scores {
		if parsed.Scores[i] > parsed.Scores[best] {
			best = i
		}
	}
	label := strings.ToLower(strings.TrimSpace(parsed.Labels[best]))
	if !knownLabel(label) {
		label = "other"
	}
	return label, parsed.Scores[best], nil
}

func knownLabel(label string) bool {
	for _, candidate := range Labels {
		if candidate == label {
			return true
		}
	}
	return false
}

func classifyTransportError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
}
