package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/internal/session"
)

// OpenAIExtractor asks a chat model to pull explicitly-stated intake fields
// out of one speech turn. The model is instructed to return only the fixed
// JSON schema with null for anything the caller did not say; anything it
// returns that does not parse as that schema is an error, and the caller
// falls back to the rule strategy.

const extractSystemPrompt = `You extract structured intake data from one turn of a phone call to a business receptionist.
Return ONLY a JSON object with exactly these keys, each a string or null:
"intent" (one of "booking", "service_request", "pricing", "hours", "other"),
"caller_name", "service", "vehicle_or_item", "location", "preferred_time", "notes".
Only include values the caller explicitly stated in the new utterance. Never guess or infer unstated values; use null instead. No prose, no markdown.`

var ErrBadModelOutput = errors.New("extract: model output did not match schema")

type OpenAIExtractor struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIExtractor(apiKey, baseURL, model string, timeout time.Duration) *OpenAIExtractor {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &OpenAIExtractor{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
	}
}

func (e *OpenAIExtractor) Extract(ctx context.Context, prior session.CollectedData, speech string) (session.ExtractedFields, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	priorJSON, err := json.Marshal(prior)
	if err != nil {
		return session.ExtractedFields{}, err
	}

	user := fmt.Sprintf("Known so far: %s\nNew utterance: %q", priorJSON, speech)

	completion, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractSystemPrompt),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return session.ExtractedFields{}, fmt.Errorf("extract: completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return session.ExtractedFields{}, ErrBadModelOutput
	}

	return ParseModelOutput(completion.Choices[0].Message.Content)
}

// ParseModelOutput decodes the model response into the fixed schema.
// It tolerates code fences and surrounding prose by slicing the outermost
// JSON object, but rejects anything that does not decode cleanly.
func ParseModelOutput(raw string) (session.ExtractedFields, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return session.ExtractedFields{}, ErrBadModelOutput
	}

	var out session.ExtractedFields
	dec := json.NewDecoder(strings.NewReader(raw[start : end+1]))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return session.ExtractedFields{}, fmt.Errorf("%w: %v", ErrBadModelOutput, err)
	}

	// An intent outside the enum is treated as unstated, not an error.
	if out.Intent != nil {
		if _, ok := session.ParseIntent(*out.Intent); !ok {
			out.Intent = nil
		}
	}
	return out, nil
}
