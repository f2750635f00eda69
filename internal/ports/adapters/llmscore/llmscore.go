// Package llmscore adapts an OpenAI-compatible chat-completions
// endpoint (OpenRouter included) into the semantic assessment and
// prompt-similarity collaborator ports.
package llmscore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/reelplan/reelplan/internal/ports"
)

const (
	defaultModel   = "openai/gpt-4.1-mini"
	requestTimeout = 90 * time.Second

	systemPrompt = "You rate transcript excerpts from long recordings for highlight-reel potential. Respond with JSON only."
)

type Adapter struct {
	client  openai.Client
	model   string
	limiter *rate.Limiter
}

func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = defaultModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if u := normalizeBaseURL(baseURL); u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}
	return &Adapter{
		client: openai.NewClient(opts...),
		model:  model,
		// One request per second with a small burst keeps collaborator
		// pressure bounded across batches.
		limiter: rate.NewLimiter(rate.Limit(1), 2),
	}
}

// ScoreBatch sends one batch of {id, text} and matches scores back by
// id. Transient failures are retried with backoff; the final error is
// returned to the caller, which degrades to a neutral score.
func (a *Adapter) ScoreBatch(ctx context.Context, items []ports.TranscriptItem) ([]ports.SemanticScore, error) {
	if len(items) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}

	user := "For every item return semantic_score in [0,1]: how interesting the excerpt is " +
		"as a standalone highlight. Do not add or drop ids.\n\n" +
		`Output: {"items":[{"id":"...","semantic_score":0.0}]}` + "\n\nItems:\n" + string(payload)

	raw, err := a.complete(ctx, user, batchSchema())
	if err != nil {
		return nil, err
	}

	var out []ports.SemanticScore
	gjson.Get(raw, "items").ForEach(func(_, v gjson.Result) bool {
		id := v.Get("id").String()
		if id == "" {
			return true
		}
		out = append(out, ports.SemanticScore{ID: id, Score: v.Get("semantic_score").Float()})
		return true
	})
	if len(out) == 0 {
		return nil, errors.New("scorer returned no items")
	}
	return out, nil
}

// Similarity rates one transcript against a free-text prompt.
func (a *Adapter) Similarity(ctx context.Context, prompt, transcript string) (float64, error) {
	user := fmt.Sprintf(
		"Rate in [0,1] how strongly the excerpt matches the editor's brief. "+
			`Output: {"score":0.0}`+"\n\nBrief: %s\n\nExcerpt: %s",
		strings.TrimSpace(prompt), strings.TrimSpace(transcript),
	)
	raw, err := a.complete(ctx, user, scoreSchema())
	if err != nil {
		return 0, err
	}
	return gjson.Get(raw, "score").Float(), nil
}

func (a *Adapter) complete(ctx context.Context, userPrompt string, schema map[string]any) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       a.model,
		Temperature: openai.Float(0.2),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "highlight_scores",
					Strict: openai.Bool(true),
					Schema: schema,
				},
			},
		},
	}

	var raw string
	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		resp, err := a.client.Chat.Completions.New(callCtx, params)
		if err != nil {
			return retry.RetryableError(err)
		}
		if len(resp.Choices) == 0 {
			return retry.RetryableError(errors.New("scorer returned no choices"))
		}
		raw = strings.TrimSpace(resp.Choices[0].Message.Content)
		if raw == "" {
			return retry.RetryableError(errors.New("scorer returned empty content"))
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("semantic scorer: %w", err)
	}
	return raw, nil
}

func batchSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"items"},
		"properties": map[string]any{
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"id", "semantic_score"},
					"properties": map[string]any{
						"id":             map[string]any{"type": "string"},
						"semantic_score": map[string]any{"type": "number"},
					},
				},
			},
		},
	}
}

func scoreSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"score"},
		"properties": map[string]any{
			"score": map[string]any{"type": "number"},
		},
	}
}
