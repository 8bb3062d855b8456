package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	mentorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trackora",
		Subsystem: "ai",
		Name:      "mentor_duration_seconds",
		Help:      "Duration of AI mentor requests",
	}, []string{"model", "operation"})

	mentorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackora",
		Subsystem: "ai",
		Name:      "mentor_failures_total",
		Help:      "Number of AI mentor failures",
	}, []string{"model", "operation"})
)

// OpenAIConfig defines configuration options for the OpenAI mentor.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIMentor implements Mentor against the OpenAI chat completion API.
type OpenAIMentor struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIMentor builds a new mentor using the provided configuration.
func NewOpenAIMentor(cfg OpenAIConfig) (*OpenAIMentor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 768
	}

	tracer := otel.Tracer("github.com/trackora/trackora-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIMentor{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Answer sends a coaching question to OpenAI and returns the reply text.
func (m *OpenAIMentor) Answer(parent context.Context, input MentorInput) (string, error) {
	return m.complete(parent, "answer", mentorSystemPrompt(), buildQuestionPrompt(input))
}

// Roadmap asks OpenAI for a personalised preparation plan.
func (m *OpenAIMentor) Roadmap(parent context.Context, input RoadmapInput) (string, error) {
	return m.complete(parent, "roadmap", mentorSystemPrompt(), buildRoadmapPrompt(input))
}

func (m *OpenAIMentor) complete(parent context.Context, operation, system, user string) (string, error) {
	ctx, span := m.tracer.Start(parent, "openai."+operation, trace.WithAttributes(
		attribute.String("model", m.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       m.cfg.Model,
		MaxTokens:   m.cfg.MaxTokens,
		Temperature: m.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: user,
			},
		},
	}

	resp, err := m.client.CreateChatCompletion(ctx, request)
	mentorDuration.WithLabelValues(m.cfg.Model, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		mentorFailures.WithLabelValues(m.cfg.Model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("openai %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		mentorFailures.WithLabelValues(m.cfg.Model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func mentorSystemPrompt() string {
	return "You are a placement preparation mentor for engineering students. Be specific, encouraging, and practical. " +
		"Ground your advice in the student's tracked progress when it is provided."
}

func buildQuestionPrompt(input MentorInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Student\n")
	builder.WriteString(input.StudentName)
	builder.WriteString("\n\n## Progress\n")
	builder.WriteString(formatTotals(input.CategoryTotals))
	if len(input.WeakAreas) > 0 {
		builder.WriteString("\n## Weak Areas\n")
		builder.WriteString(strings.Join(input.WeakAreas, ", "))
		builder.WriteString("\n")
	}
	builder.WriteString("\n## Question\n")
	builder.WriteString(input.Question)
	return builder.String()
}

func buildRoadmapPrompt(input RoadmapInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Student\n")
	builder.WriteString(input.StudentName)
	builder.WriteString(fmt.Sprintf("\nDays active: %d\n", input.DaysActive))
	builder.WriteString("\n## Progress\n")
	builder.WriteString(formatTotals(input.CategoryTotals))
	if len(input.WeakAreas) > 0 {
		builder.WriteString("\n## Weak Areas\n")
		builder.WriteString(strings.Join(input.WeakAreas, ", "))
		builder.WriteString("\n")
	}
	builder.WriteString("\nGenerate a one-week preparation roadmap with daily focus items.")
	return builder.String()
}

func formatTotals(totals map[string]int) string {
	if len(totals) == 0 {
		return "No activity recorded yet.\n"
	}
	keys := make([]string, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	builder := strings.Builder{}
	for _, key := range keys {
		builder.WriteString(fmt.Sprintf("- %s: %d\n", key, totals[key]))
	}
	return builder.String()
}
