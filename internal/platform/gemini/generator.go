package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/chemlab-api/internal/config"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/generation"
	"github.com/phrazzld/chemlab-api/internal/redact"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models the generator uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	logger  *slog.Logger
	config  config.LLMConfig
	prompts *prompts
	models  contentGenerator

	// sleep waits between retries; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error

	rngMu sync.Mutex
	rng   *rand.Rand
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator with a genai client for cfg.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, redact.Error(err))
	}

	return newGenerator(logger, cfg, client.Models)
}

func newGenerator(logger *slog.Logger, cfg config.LLMConfig, models contentGenerator) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if models == nil {
		return nil, fmt.Errorf("%w: model client cannot be nil", generation.ErrInvalidConfig)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	p, err := newPrompts()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger:  logger.With("component", "gemini_generator", "model", cfg.ModelName),
		config:  cfg,
		prompts: p,
		models:  models,
		sleep:   sleepContext,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func validateConfig(cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	return nil
}

// Explain asks the tutor prompt for a short explanation.
func (g *Generator) Explain(ctx context.Context, topic, context string) (string, error) {
	prompt, err := g.prompts.explainPrompt(topic, context)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrInvalidInput, err)
	}
	text, err := g.callWithRetry(ctx, generation.OpExplain, prompt, nil)
	if err != nil {
		return "", err
	}
	return text, nil
}

// GenerateQuiz requests one question as schema-constrained JSON.
func (g *Generator) GenerateQuiz(ctx context.Context, topic string) (domain.QuizQuestion, error) {
	prompt, err := g.prompts.quizPrompt(topic)
	if err != nil {
		return domain.QuizQuestion{}, fmt.Errorf("%w: %v", generation.ErrInvalidInput, err)
	}

	text, err := g.callWithRetry(ctx, generation.OpQuiz, prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   quizSchema(),
	})
	if err != nil {
		return domain.QuizQuestion{}, err
	}
	return parseQuiz(text)
}

// AnalyzeReaction predicts what happens when the named chemicals are mixed.
func (g *Generator) AnalyzeReaction(ctx context.Context, names []string) (string, error) {
	prompt, err := g.prompts.reactionPrompt(names)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrInvalidInput, err)
	}
	return g.callWithRetry(ctx, generation.OpReaction, prompt, nil)
}

func parseQuiz(text string) (domain.QuizQuestion, error) {
	var resp quizResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return domain.QuizQuestion{}, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}
	q := domain.QuizQuestion{
		Question:    resp.Question,
		Options:     resp.Options,
		Correct:     resp.CorrectAnswer,
		Explanation: resp.Explanation,
	}
	if err := q.Validate(); err != nil {
		return domain.QuizQuestion{}, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	return q, nil
}

// callWithRetry makes a call with exponential backoff and jitter. Blocked
// content and empty or unparsable responses are permanent and not retried.
func (g *Generator) callWithRetry(
	ctx context.Context,
	op string,
	prompt string,
	genConfig *genai.GenerateContentConfig,
) (string, error) {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := time.Duration(g.config.RetryDelaySeconds) * time.Second
	if baseDelay <= 0 {
		baseDelay = time.Second
	}

	log := g.logger.With("operation", op)

	for attempt := 0; ; attempt++ {
		callCtx, cancel := g.attemptContext(ctx)
		resp, err := g.models.GenerateContent(callCtx, g.config.ModelName, genai.Text(prompt), genConfig)
		cancel()

		var text string
		if err != nil {
			err = fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		} else {
			text, err = extractText(resp)
		}

		if err == nil {
			log.DebugContext(ctx, "Gemini API call successful", "attempt", attempt+1)
			return text, nil
		}

		log.WarnContext(ctx, "Gemini API call failed",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"error", redact.Error(err))

		if !errors.Is(err, generation.ErrTransientFailure) {
			return "", err
		}
		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrGenerationFailed, maxRetries)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", generation.ErrGenerationFailed, ctx.Err())
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		delay := time.Duration(float64(baseDelay) * math.Pow(2, float64(attempt)) * g.jitter())
		if err := g.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
		}
	}
}

func (g *Generator) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.config.RequestTimeoutSeconds <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(g.config.RequestTimeoutSeconds)*time.Second)
}

func (g *Generator) jitter() float64 {
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return 0.5 + g.rng.Float64()*0.5
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", generation.ErrEmptyResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", generation.ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", generation.ErrEmptyResponse
	}
	return text, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
