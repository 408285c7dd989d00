package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/config"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	// WhisperModel is the Groq speech model used for transcription.
	WhisperModel = "whisper-large-v3"

	chatTemperature = 0.7
	chatMaxTokens   = 4096
)

// GroqClient talks to the OpenAI-compatible Groq API.
type GroqClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *retryablehttp.Client
}

// NewGroqClient creates a client from configuration.
func NewGroqClient(cfg config.Groq, log *zap.Logger) *GroqClient {
	return &GroqClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		http:    newHTTPClient(log),
	}
}

// Configured reports whether an API key is set.
func (c *GroqClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Complete runs a chat completion and returns the first choice's content,
// or "" when the provider returned no choices.
func (c *GroqClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", body)
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq chat completion: %w", err)
	}
	if err := checkResponse("groq chat completion", resp); err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

// Transcribe sends one audio clip to Whisper and returns the recognised text.
func (c *GroqClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("build transcription form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("build transcription form: %w", err)
	}
	_ = w.WriteField("model", WhisperModel)
	_ = w.WriteField("response_format", "json")
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("build transcription form: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq transcription: %w", err)
	}
	if err := checkResponse("groq transcription", resp); err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}
	return out.Text, nil
}
