package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pageza/recipe-creator/backend/internal/models"
)

// GenerateRequest is what the user asks the model for.
type GenerateRequest struct {
	Ingredients []string
	Members     int
	Cuisine     string
	Language    string
}

// GeneratedRecipe is the model's answer after parsing.
type GeneratedRecipe struct {
	Title              string
	Cuisine            string
	Serves             int
	Ingredients        []models.Ingredient
	Instructions       []models.Instruction
	ServingSuggestions []string
}

// RecipeGenerator produces a recipe from a request.
type RecipeGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GeneratedRecipe, error)
}

// LLMService calls an OpenAI compatible chat completions API (DeepSeek by default).
type LLMService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewLLMService builds a client for baseURL. The HTTP client carries no
// timeout; generation may take as long as the upstream needs.
func NewLLMService(baseURL, apiKey, model string) *LLMService {
	return &LLMService{
		apiKey: apiKey,
		apiURL: strings.TrimRight(baseURL, "/") + "/chat/completions",
		model:  model,
		client: &http.Client{},
	}
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

const systemPrompt = `You are a professional chef. Reply with a single JSON object and nothing else, using exactly this shape:
{"title": string, "cuisine": string, "serves": number,
 "ingredients": [{"item": string, "quantity": string, "unit": string, "notes": string}],
 "instructions": [{"step": number, "description": string}],
 "serving_suggestions": [string]}`

func buildPrompt(req GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a recipe that serves %d people using these ingredients: %s.", req.Members, strings.Join(req.Ingredients, ", "))
	if req.Cuisine != "" {
		fmt.Fprintf(&b, " The cuisine should be %s.", req.Cuisine)
	}
	if req.Language != "" {
		fmt.Fprintf(&b, " Write every text field in %s, but keep the JSON keys in English.", req.Language)
	}
	b.WriteString(" Only add common pantry staples beyond the listed ingredients.")
	return b.String()
}

// Generate asks the model for a recipe. It does not retry.
func (s *LLMService) Generate(ctx context.Context, req GenerateRequest) (*GeneratedRecipe, error) {
	payload, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call generation api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation api returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, errors.New("no choices in API response")
	}

	return parseRecipe(result.Choices[0].Message.Content)
}

// wireRecipe tolerates numbers sent as strings and the other way round.
type wireRecipe struct {
	Title       string  `json:"title"`
	Cuisine     string  `json:"cuisine"`
	Serves      flexInt `json:"serves"`
	Ingredients []struct {
		Item     string     `json:"item"`
		Quantity flexString `json:"quantity"`
		Unit     string     `json:"unit"`
		Notes    string     `json:"notes"`
	} `json:"ingredients"`
	Instructions []struct {
		Step        flexInt `json:"step"`
		Description string  `json:"description"`
	} `json:"instructions"`
	ServingSuggestions []string `json:"serving_suggestions"`
}

func parseRecipe(content string) (*GeneratedRecipe, error) {
	raw, err := extractJSON(content)
	if err != nil {
		return nil, err
	}

	var w wireRecipe
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, fmt.Errorf("failed to parse recipe JSON: %w", err)
	}

	out := &GeneratedRecipe{
		Title:              strings.TrimSpace(w.Title),
		Cuisine:            strings.TrimSpace(w.Cuisine),
		Serves:             int(w.Serves),
		ServingSuggestions: w.ServingSuggestions,
	}
	for _, ing := range w.Ingredients {
		if strings.TrimSpace(ing.Item) == "" {
			continue
		}
		out.Ingredients = append(out.Ingredients, models.Ingredient{
			Item:     ing.Item,
			Quantity: string(ing.Quantity),
			Unit:     ing.Unit,
			Notes:    ing.Notes,
		})
	}
	for i, ins := range w.Instructions {
		if strings.TrimSpace(ins.Description) == "" {
			continue
		}
		step := int(ins.Step)
		if step <= 0 {
			step = i + 1
		}
		out.Instructions = append(out.Instructions, models.Instruction{Step: step, Description: ins.Description})
	}

	switch {
	case out.Title == "":
		return nil, errors.New("generated recipe has no title")
	case len(out.Ingredients) == 0:
		return nil, errors.New("generated recipe has no ingredients")
	case len(out.Instructions) == 0:
		return nil, errors.New("generated recipe has no instructions")
	}
	return out, nil
}

// extractJSON pulls the JSON object out of a reply that may wrap it in a
// ```json fence or surrounding prose.
func extractJSON(content string) (string, error) {
	content = strings.TrimSpace(content)
	if i := strings.Index(content, "```json"); i >= 0 {
		rest := content[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j]), nil
		}
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", errors.New("no JSON object in model reply")
	}
	return content[start : end+1], nil
}

type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexInt(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	// "4-6 people" counts as 4.
	digits := strings.TrimLeft(str, " ")
	end := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		digits = digits[:end]
	}
	n, _ := strconv.Atoi(digits)
	*f = flexInt(n)
	return nil
}

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*f = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexString(num.String())
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	return fmt.Errorf("invalid string %s", data)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
