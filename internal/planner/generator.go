package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const defaultTemperature = 0.6

var ErrEmptyResponse = errors.New("empty response from model")

// Message is one turn of a chat history. Role is "user" or "model".
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Generator turns a prompt (plus optional history) into model text.
type Generator interface {
	Generate(ctx context.Context, system string, history []Message, prompt string) (string, error)
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

var newGenaiClientFn = genai.NewClient

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := newGenaiClientFn(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, system string, history []Message, prompt string) (string, error) {
	ctx, span := otel.Tracer("planner").Start(ctx, "GeminiGenerate", trace.WithAttributes(
		attribute.String("llm.model", g.model),
		attribute.Int("prompt.length", len(prompt)),
		attribute.Int("history.length", len(history)),
	))
	defer span.End()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](defaultTemperature),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, buildContents(history, prompt), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		span.SetStatus(codes.Error, "empty response")
		return "", ErrEmptyResponse
	}
	span.SetAttributes(attribute.Int("response.length", len(text)))
	span.SetStatus(codes.Ok, "generated")
	return text, nil
}

func buildContents(history []Message, prompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if m.Role == "model" || m.Role == "assistant" || m.Role == "bot" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}
