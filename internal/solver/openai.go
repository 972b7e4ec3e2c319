package solver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smart-calculator/internal/observability"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	solveInstruction = "You are a mathematical genius. Solve the user's word problem. " +
		"Return the final numerical result and a brief step-by-step breakdown."
	explainTemplate = "Explain the calculation step-by-step for: %s = %s. " +
		"Keep it concise and suitable for a mobile app screen."
)

var tracer = otel.Tracer("solver")

// solutionSchema constrains the model's reply to the shape ParseSolution accepts.
var solutionSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"result": {
			Type:        jsonschema.String,
			Description: "The final numerical result of the calculation.",
		},
		"explanation": {
			Type:        jsonschema.String,
			Description: "Short step-by-step explanation.",
		},
	},
	Required:             []string{"result", "explanation"},
	AdditionalProperties: false,
}

// Config selects the model endpoint. Any OpenAI-compatible chat completion
// API works; the default points at Gemini's compatibility endpoint.
type Config struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"-"`
	Model        string        `yaml:"model"`
	ExplainModel string        `yaml:"explain_model"`
	Timeout      time.Duration `yaml:"timeout"`
	Temperature  float32       `yaml:"temperature"`
	TopP         float32       `yaml:"top_p"`
}

// DefaultConfig returns the models and sampling settings the calculator ships with.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://generativelanguage.googleapis.com/v1beta/openai",
		Model:        "gemini-3-pro-preview",
		ExplainModel: "gemini-3-flash-preview",
		Timeout:      30 * time.Second,
		Temperature:  0.7,
		TopP:         0.95,
	}
}

// OpenAIClient talks to an OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client *openai.Client
	cfg    Config
}

var _ Client = (*OpenAIClient)(nil)

func NewOpenAIClient(cfg Config) *OpenAIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.ExplainModel == "" {
		cfg.ExplainModel = cfg.Model
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		cfg:    cfg,
	}
}

// SolveWordProblem asks the model for a JSON {result, explanation} reply.
func (c *OpenAIClient) SolveWordProblem(ctx context.Context, prompt string) (Solution, error) {
	ctx, span := tracer.Start(ctx, "solver.solve",
		trace.WithAttributes(
			attribute.String("solver.model", c.cfg.Model),
			attribute.Int("solver.prompt_length", len(prompt)),
		),
	)
	defer span.End()

	text, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: solveInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "word_problem_solution",
				Schema: &solutionSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		err = Wrap("solve", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "solve failed")
		return Solution{}, err
	}

	sol, err := ParseSolution(text)
	if err != nil {
		observability.LoggerWithTrace(ctx).Warn("solver reply rejected",
			zap.String("model", c.cfg.Model),
			zap.Int("reply_length", len(text)),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed reply")
		return Solution{}, err
	}

	span.SetStatus(codes.Ok, "")
	return sol, nil
}

// Explain asks for a short prose walkthrough of expression = result.
func (c *OpenAIClient) Explain(ctx context.Context, expression, result string) (string, error) {
	ctx, span := tracer.Start(ctx, "solver.explain",
		trace.WithAttributes(attribute.String("solver.model", c.cfg.ExplainModel)),
	)
	defer span.End()

	text, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.ExplainModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(explainTemplate, expression, result)},
		},
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
	})
	if err != nil {
		err = Wrap("explain", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "explain failed")
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		err := &Error{Op: "explain", Err: ErrEmptyResponse}
		span.RecordError(err)
		span.SetStatus(codes.Error, "empty reply")
		return "", err
	}

	span.SetStatus(codes.Ok, "")
	return text, nil
}

func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("model API returned status %d: %w", apiErr.HTTPStatusCode, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
