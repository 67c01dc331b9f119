package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
)

// FallbackCategory is used when the model does not answer with a usable
// category.
const FallbackCategory = "Other"

// Confidence is how certain the categorization is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Input is a transaction to categorize.
type Input struct {
	ID          uuid.UUID
	Description string
	Amount      decimal.Decimal
}

// Suggestion is the categorization of one transaction.
type Suggestion struct {
	ID           uuid.UUID
	MerchantName string
	Category     string
	Confidence   Confidence
}

// Completer creates chat completions. *openai.Client implements it.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AI categorizes transactions with a chat completion model.
type AI struct {
	Client Completer
	Model  string
}

// NewAI returns a categorizer for an OpenAI compatible API. An empty base
// URL uses the OpenAI API.
func NewAI(apiKey, baseURL, model string, client *http.Client) *AI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if client != nil {
		cfg.HTTPClient = client
	}

	return &AI{
		Client: openai.NewClientWithConfig(cfg),
		Model:  model,
	}
}

var fences = regexp.MustCompile("```json\n?|\n?```")

// Suggest asks the model for merchant names and categories.
//
// A suggestion is returned for every input, in the same order. If the model
// fails or answers with something unusable, the description is kept as
// merchant name, the category is FallbackCategory and the confidence low.
// The error is returned alongside these fallbacks.
func (a *AI) Suggest(ctx context.Context, inputs []Input, categories []string) ([]Suggestion, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	resp, err := a.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.Model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a financial transaction categorizer.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt(inputs, categories),
			},
		},
	})
	if err != nil {
		return fallback(inputs), errors.Wrap(err, "categorization request failed")
	}

	if len(resp.Choices) == 0 {
		return fallback(inputs), errors.New("categorization response contains no choices")
	}

	answers, err := parse(resp.Choices[0].Message.Content)
	if err != nil {
		return fallback(inputs), errors.Wrap(err, "categorization response is not valid JSON")
	}

	suggestions := make([]Suggestion, 0, len(inputs))
	for i, in := range inputs {
		s := Suggestion{
			ID:           in.ID,
			MerchantName: in.Description,
			Category:     FallbackCategory,
			Confidence:   ConfidenceLow,
		}

		if answer, ok := find(answers, i); ok {
			if answer.MerchantName != "" {
				s.MerchantName = answer.MerchantName
			}

			if answer.Category != "" {
				s.Category = answer.Category
			}

			switch c := Confidence(strings.ToLower(answer.Confidence)); c {
			case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
				s.Confidence = c
			}
		}

		suggestions = append(suggestions, s)
	}

	return suggestions, nil
}

type answer struct {
	Index        int    `json:"index"`
	MerchantName string `json:"merchantName"`
	Category     string `json:"category"`
	Confidence   string `json:"confidence"`
}

func parse(content string) ([]answer, error) {
	cleaned := strings.TrimSpace(fences.ReplaceAllString(content, ""))

	var answers []answer
	if err := json.Unmarshal([]byte(cleaned), &answers); err != nil {
		return nil, err
	}

	return answers, nil
}

// find returns the answer at the position of the input, or the one with
// the matching one-based index.
func find(answers []answer, i int) (answer, bool) {
	if i < len(answers) && (answers[i].Index == 0 || answers[i].Index == i+1) {
		return answers[i], true
	}

	for _, a := range answers {
		if a.Index == i+1 {
			return a, true
		}
	}

	return answer{}, false
}

func fallback(inputs []Input) []Suggestion {
	suggestions := make([]Suggestion, 0, len(inputs))
	for _, in := range inputs {
		suggestions = append(suggestions, Suggestion{
			ID:           in.ID,
			MerchantName: in.Description,
			Category:     FallbackCategory,
			Confidence:   ConfidenceLow,
		})
	}

	return suggestions
}

func prompt(inputs []Input, categories []string) string {
	var b strings.Builder

	b.WriteString("Given a list of raw bank transaction descriptions, extract merchant names and assign categories for each.\n\nTransactions:\n")
	for i, in := range inputs {
		fmt.Fprintf(&b, "%d. %q - %s\n", i+1, in.Description, in.Amount.StringFixed(2))
	}

	b.WriteString("\nCategories to choose from:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s\n", c)
	}

	b.WriteString(`
Respond in JSON format only, no markdown. Return an array with one object per transaction in the same order:
[{"index": 1, "merchantName": "Clean merchant name", "category": "Category name", "confidence": "high/medium/low"}]`)

	return b.String()
}
