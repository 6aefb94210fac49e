package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domain "github.com/maumlog/emotion-engine/internal/domain/analysis"
	"github.com/maumlog/emotion-engine/internal/infra/ai/prompt"
)

const (
	defaultChatModel       = "gpt-4o-mini"
	defaultTranscribeModel = openai.Whisper1
	defaultTimeout         = 30 * time.Second
	maxTokens              = 1000
	temperature            = 0.3
)

// Client implements the InferenceClient and Transcriber ports on top of the
// OpenAI API.
type Client struct {
	*openai.Client
	ChatModel       string
	VisionModel     string
	TranscribeModel string
	Timeout         time.Duration

	labels  []string
	allowed map[string]bool
}

// NewClient builds a client enum-constrained to the given fine vocabulary.
// Empty model names fall back to defaults.
func NewClient(apiKey, chatModel, visionModel, transcribeModel string, timeout time.Duration, labels []string) *Client {
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	if visionModel == "" {
		visionModel = chatModel
	}
	if transcribeModel == "" {
		transcribeModel = defaultTranscribeModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		Client:          openai.NewClient(apiKey),
		ChatModel:       chatModel,
		VisionModel:     visionModel,
		TranscribeModel: transcribeModel,
		Timeout:         timeout,
		labels:          labels,
		allowed:         prompt.AllowedSet(labels),
	}
}

// ModelVersion identifies the model combination for cache records.
func (c *Client) ModelVersion() string {
	return fmt.Sprintf("%s+%s", c.ChatModel, c.TranscribeModel)
}

// ClassifyText implements analysis.InferenceClient.
func (c *Client) ClassifyText(ctx context.Context, text string, prior []domain.EmotionSummary) (*domain.TextAnalysis, error) {
	raw, err := c.complete(ctx, c.ChatModel, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.TextSystemPrompt(c.labels)},
		{Role: openai.ChatMessageRoleUser, Content: prompt.TextUserPrompt(text, prior)},
	})
	if err != nil {
		return nil, err
	}
	return prompt.ParseTextAnalysis(raw, c.allowed)
}

// AnalyzeImage implements analysis.InferenceClient.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, textContext string) (*domain.ImageAnalysis, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
	raw, err := c.complete(ctx, c.VisionModel, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.VisionSystemPrompt(c.labels)},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt.VisionUserPrompt(textContext)},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: openai.ImageURLDetailHigh,
					},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return prompt.ParseImageAnalysis(raw, c.allowed)
}

// AnalyzeTranscript implements analysis.InferenceClient.
func (c *Client) AnalyzeTranscript(ctx context.Context, transcript string, meta map[string]string) (*domain.VoiceAnalysis, error) {
	raw, err := c.complete(ctx, c.ChatModel, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.VoiceSystemPrompt(c.labels)},
		{Role: openai.ChatMessageRoleUser, Content: prompt.VoiceUserPrompt(transcript, meta)},
	})
	if err != nil {
		return nil, err
	}
	out, err := prompt.ParseVoiceAnalysis(raw, c.allowed)
	if err != nil {
		return nil, err
	}
	out.Transcript = transcript
	return out, nil
}

// Transcribe implements analysis.Transcriber via the speech-to-text API.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	resp, err := c.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.TranscribeModel,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio.webm",
		Language: "ko",
	})
	if err != nil {
		return "", wrapErr("transcribe", err)
	}
	return resp.Text, nil
}

func (c *Client) complete(ctx context.Context, model string, messages []openai.ChatCompletionMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", wrapErr("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", &domain.MalformedResponseError{Reason: "no choices returned"}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func wrapErr(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return domain.ErrQuotaExceeded
	}
	return &domain.InferenceError{Op: op, Err: err}
}
