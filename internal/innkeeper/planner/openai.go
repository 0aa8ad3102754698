package planner

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

const (
	defaultPlannerBase  = "https://api.openai.com/v1"
	defaultPlannerModel = "gpt-4o-mini"
	defaultTimeout      = 30 * time.Second
)

// Config configures the OpenAI-compatible planner provider.
type Config struct {
	// APIKey is the bearer token used to authenticate against the API.
	APIKey string

	// BaseURL overrides the API endpoint. Useful for local models (Ollama),
	// Azure OpenAI, or any other OpenAI-compatible endpoint.
	// Defaults to https://api.openai.com/v1 when empty.
	BaseURL string

	// Model is the chat model to use. Defaults to gpt-4o-mini when empty.
	Model string

	// Timeout is the HTTP request timeout. Defaults to 30 s.
	Timeout time.Duration
}

// openAIProvider implements Provider using the OpenAI chat completions API
// with JSON-mode output to guarantee a parseable Plan.
type openAIProvider struct {
	cfg    Config
	client *http.Client
}

// New returns a Provider backed by the OpenAI (or compatible) chat API.
// The returned provider is safe for concurrent use.
func New(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultPlannerBase
	}
	if cfg.Model == "" {
		cfg.Model = defaultPlannerModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &openAIProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// --- minimal OpenAI wire types ---

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiRequest struct {
	Model          string       `json:"model"`
	Messages       []oaiMessage `json:"messages"`
	MaxTokens      int          `json:"max_tokens,omitempty"`
	ResponseFormat *oaiFormat   `json:"response_format,omitempty"`
}

type oaiFormat struct {
	Type string `json:"type"` // "json_object"
}

type oaiResponse struct {
	Choices []oaiChoice `json:"choices"`
	Usage   *oaiUsage   `json:"usage,omitempty"`
	Model   string      `json:"model,omitempty"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type oaiChoice struct {
	Message      oaiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

type oaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// systemPromptTmpl is the instruction set sent as the "system" message.
// Three printf verbs are substituted at call time:
//  1. %s: reply language
//  2. %s: known slot values, one "name: value" per line
//  3. %s: current sales stage
const systemPromptTmpl = `You are the reservations assistant of a hotel, replying to guests over chat.

Your only job is to translate the guest's message into a structured JSON plan.
You NEVER commit reservations, cancellations, or payments yourself — you only
propose a category, slot values, and a reply; a separate gate decides whether
the reply may be sent.

Reply language: %s

Already known about this reservation (do NOT ask again for these):
%s

Sales stage: %s

RULES (strict — do not deviate):
1. Respond ONLY with valid JSON. No markdown, no code fences, no text outside JSON.
2. Dates in slots use ISO format yyyy-mm-dd; in the reply text use dd/mm/yyyy.
3. Only fill a slot when the guest stated it this turn or earlier; never invent values.
4. Never confirm availability or prices you were not given.
5. If the guest wants to cancel, set category "cancel_reservation" and desiredAction "cancel".
6. If you cannot classify the message, use category "unknown" and a clarifying reply.

JSON schema for your response (include ONLY fields you can fill):
{
  "category":      "reservation" | "cancel_reservation" | "information" |
                   "reservation_snapshot" | "reservation_verify" |
                   "resend_summary" | "greeting" | "unknown",
  "desiredAction": "create" | "update" | "cancel",
  "slots":         {"guestName": "...", "roomType": "...", "checkIn": "yyyy-mm-dd",
                    "checkOut": "yyyy-mm-dd", "numGuests": 2},
  "reply":         "<guest-facing reply text>",
  "explanation":   "<one sentence on what you decided>"
}
`

// Plan sends the guest turn to the model and returns the validated Plan.
func (p *openAIProvider) Plan(ctx context.Context, req Request) (*Plan, *Usage, error) {
	known := make([]string, 0, len(req.KnownSlots))
	for name, value := range req.KnownSlots {
		known = append(known, fmt.Sprintf("%s: %s", name, value))
	}
	knownText := strings.Join(known, "\n")
	if knownText == "" {
		knownText = "(nothing yet)"
	}
	language := req.Language
	if language == "" {
		language = "es"
	}
	stage := req.SalesStage
	if stage == "" {
		stage = "qualify"
	}

	system := fmt.Sprintf(systemPromptTmpl, language, knownText, stage)

	messages := make([]oaiMessage, 0, len(req.History)+2)
	messages = append(messages, oaiMessage{Role: "system", Content: system})
	for _, h := range req.History {
		messages = append(messages, oaiMessage{Role: h.Role, Content: h.Content})
	}
	messages = append(messages, oaiMessage{Role: "user", Content: req.Message})

	body := oaiRequest{
		Model:          p.cfg.Model,
		Messages:       messages,
		MaxTokens:      512,
		ResponseFormat: &oaiFormat{Type: "json_object"},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("planner: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/chat/completions",
		bytes.NewReader(data),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("planner: create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("planner: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, nil, ErrRateLimit
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("planner: read response body: %w", err)
	}

	var oaiResp oaiResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return nil, nil, fmt.Errorf("planner: decode API response: %w", err)
	}

	if oaiResp.Error != nil {
		return nil, nil, fmt.Errorf("planner: API error (%s): %s", oaiResp.Error.Type, oaiResp.Error.Message)
	}
	if len(oaiResp.Choices) == 0 {
		return nil, nil, fmt.Errorf("planner: no choices returned (HTTP %d)", resp.StatusCode)
	}

	plan, err := decodePlan(oaiResp.Choices[0].Message.Content)
	if err != nil {
		return nil, nil, err
	}

	usage := &Usage{Model: oaiResp.Model, LatencyMS: sinceMS(start)}
	if oaiResp.Usage != nil {
		usage.PromptTokens = oaiResp.Usage.PromptTokens
		usage.CompletionTokens = oaiResp.Usage.CompletionTokens
		usage.TotalTokens = oaiResp.Usage.TotalTokens
	}
	return plan, usage, nil
}
