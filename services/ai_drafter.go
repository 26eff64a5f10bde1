package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// DraftRequest is the operator's brief for a post.
type DraftRequest struct {
	BusinessName string `json:"business_name"`
	Topic        string `json:"topic"`
	Tone         string `json:"tone"`
	ContentType  string `json:"content_type"`
}

// ContentDrafter produces post copy from a short brief. The text is opaque
// to the rest of the system; nothing downstream depends on how it was made.
type ContentDrafter interface {
	Draft(ctx context.Context, req DraftRequest) (string, error)
}

// OpenAIDrafter drafts through an OpenAI-compatible chat completions
// endpoint. Base URL and model come from the environment so a self-hosted
// compatible server works the same way.
type OpenAIDrafter struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewOpenAIDrafter() *OpenAIDrafter {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIDrafter{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		model:   model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const drafterSystemPrompt = "You write Google Business Profile posts for local businesses. " +
	"Keep the post under 1500 characters, lead with the hook, no hashtags, no emoji walls, " +
	"and end with a short call to action. Reply with the post text only."

func (d *OpenAIDrafter) Draft(ctx context.Context, req DraftRequest) (string, error) {
	if d.apiKey == "" {
		return "", errors.New("OPENAI_API_KEY is not set")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return "", errors.New("topic is required")
	}

	brief := fmt.Sprintf("Business: %s\nPost type: %s\nTone: %s\nTopic: %s",
		req.BusinessName, req.ContentType, req.Tone, req.Topic)

	payload, err := json.Marshal(chatRequest{
		Model: d.model,
		Messages: []chatMessage{
			{Role: "system", Content: drafterSystemPrompt},
			{Role: "user", Content: brief},
		},
		MaxTokens:   600,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("draft request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("draft service returned status %d", resp.StatusCode)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("draft response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("draft service returned no choices")
	}

	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}
