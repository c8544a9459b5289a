// Package summarize turns pull request context into changelog entry text
// via an OpenAI chat completion. The model is a black box here: one
// request, plain-text response, no tool use.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultModel is used when configuration does not name one.
const DefaultModel = "gpt-4o"

const systemPrompt = "You are a senior release engineer. Produce a concise, detailed, and actionable changelog entry suitable for a daily changelog page. " +
	"Focus on user-visible changes, API/DB migrations, risk/rollback notes, and follow-ups. Use clear bullets; avoid code diffs."

const userPromptFormat = `From the following PR context, write a changelog section with:
- What changed (grouped by area or feature)
- Why it changed (intent)
- Impact and risks (perf, UX, reliability)
- Migration/ops notes if relevant

Keep it crisp (6-12 bullets). If context is sparse, infer carefully but do not hallucinate.

Context:
---
%s
---

Output format:
- Start with a one-line summary.
- Then a bullet list (one point per line).`

// ErrEmptySummary means the model returned no usable content. The run
// cannot proceed without an entry body, so this is fatal and not retried.
var ErrEmptySummary = errors.New("summarizer returned empty content")

// completions is the slice of the OpenAI client the summarizer uses,
// extracted for test fakes.
type completions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Summarizer produces changelog entry text from PR context.
type Summarizer struct {
	completions completions
	model       string
}

// New returns a Summarizer using the given API key and model name.
func New(apiKey, model string) (*Summarizer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai api key required")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return newWithCompletions(&client.Chat.Completions, model), nil
}

func newWithCompletions(c completions, model string) *Summarizer {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Summarizer{completions: c, model: model}
}

// Summarize runs one completion over the PR context and returns the entry
// text. Empty model output is ErrEmptySummary.
func (s *Summarizer) Summarize(ctx context.Context, prContext string) (string, error) {
	completion, err := s.completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf(userPromptFormat, prContext)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarizing with %s: %w", s.model, err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptySummary
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptySummary
	}
	return text, nil
}

// Model returns the model name in use.
func (s *Summarizer) Model() string { return s.model }
