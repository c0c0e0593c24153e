// Package generation calls the external generation service and turns its
// output into persisted plan versions.
package generation

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/plexusfit/fitplan/internal/model"
)

// Generator produces the raw text answer for a profile-derived request.
// The response is expected to contain a JSON array but arrives as free text.
type Generator interface {
	Generate(ctx context.Context, kind model.PlanKind, profile *model.Profile) (string, error)
}

// OpenAIGenerator implements Generator over the chat-completions API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator for the given API key and model.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Generate runs one chat completion for the requested plan kind.
func (g *OpenAIGenerator) Generate(ctx context.Context, kind model.PlanKind, profile *model.Profile) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You must output valid JSON only. Never include markdown code fences."},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(kind, profile)},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildPrompt(kind model.PlanKind, p *model.Profile) string {
	var b strings.Builder

	switch kind {
	case model.PlanDiet:
		b.WriteString("You are an expert nutritionist. Generate a weekly diet plan as JSON, adapted to the following profile:\n\n")
	default:
		b.WriteString("You are an expert personal trainer. Generate a weekly training routine as JSON, adapted to the following profile:\n\n")
	}

	fmt.Fprintf(&b, "Age: %s\n", orUnspecified(fmt.Sprintf("%d", p.Age), p.Age == 0))
	fmt.Fprintf(&b, "Sex: %s\n", orUnspecified(p.Sex, p.Sex == ""))
	fmt.Fprintf(&b, "Height: %.0f cm\n", p.HeightCM)
	fmt.Fprintf(&b, "Weight: %.1f kg\n", p.WeightKG)
	fmt.Fprintf(&b, "Activity level: %s\n", orUnspecified(p.ActivityLevel, p.ActivityLevel == ""))
	fmt.Fprintf(&b, "Goal: %s\n", orUnspecified(p.Goal, p.Goal == ""))
	fmt.Fprintf(&b, "Preferences: %s\n", jsonOrNone(p.Preferences))
	fmt.Fprintf(&b, "Allergies: %s\n", listOrNone(p.Allergies))

	switch kind {
	case model.PlanDiet:
		b.WriteString(`
Return a JSON array with the format:
[
  { "day": "Monday", "calories": 2200, "meals": ["Breakfast: ...", "Lunch: ...", "Dinner: ..."] },
  ...
]
`)
	default:
		b.WriteString(`
Return a JSON array with the format:
[
  { "day": "Monday — Push", "exercises": [ { "name": "...", "setsReps": "4x8", "note": "..." } ] },
  ...
]
`)
	}
	return b.String()
}

func orUnspecified(v string, empty bool) string {
	if empty {
		return "unspecified"
	}
	return v
}

func jsonOrNone(m model.JSONMap) string {
	if len(m) == 0 {
		return "none"
	}
	return fmt.Sprintf("%v", map[string]interface{}(m))
}

func listOrNone(l model.StringList) string {
	if len(l) == 0 {
		return "none"
	}
	return strings.Join(l, ", ")
}
