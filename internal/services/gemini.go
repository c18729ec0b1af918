package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"hrflow/internal/config"
	apperrors "hrflow/internal/errors"
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker[string]
	logger     *zap.Logger
}

const maxEmbeddingInput = 40000

func NewGeminiService(cfg config.GeminiConfig, logger *zap.Logger) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	settings := gobreaker.Settings{
		Name:    "gemini-completions",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &geminiService{
		client:     client,
		modelName:  "gemini-2.5-flash",
		embedModel: "text-embedding-004",
		timeout:    cfg.RequestTimeout,
		breaker:    gobreaker.NewCircuitBreaker[string](settings),
		logger:     logger,
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if len(text) > maxEmbeddingInput {
		text = text[:maxEmbeddingInput]
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, apperrors.NewRetrievalError(apperrors.ErrCodeEmbeddingFailed,
			"failed to generate embedding", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, apperrors.NewRetrievalError(apperrors.ErrCodeEmbeddingFailed,
			"empty embedding result", nil)
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.breaker.Execute(func() (string, error) {
		resp, err := g.client.Models.GenerateContent(callCtx, g.modelName, genai.Text(prompt), genCfg)
		if err != nil {
			return "", fmt.Errorf("failed to generate text: %w", err)
		}
		if resp == nil {
			return "", fmt.Errorf("no response generated")
		}
		out := resp.Text()
		if out == "" {
			return "", fmt.Errorf("no text content in response")
		}
		return out, nil
	})
	if err != nil {
		return "", apperrors.NewGenerationError(apperrors.ErrCodeAIServiceFailed,
			"completion call failed", err)
	}

	return text, nil
}

// GenerateTextWithRetry implements GeminiService. Retries with
// exponential backoff and jitter; the context going away stops the
// loop immediately.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			backoff := backoffDelay(attempt - 1)
			g.logger.Warn("retrying completion",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", apperrors.NewGenerationError(apperrors.ErrCodeAITimeout,
					"context cancelled during retry", ctx.Err())
			}
		}

		result, err := g.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	return "", apperrors.NewGenerationError(apperrors.ErrCodeGenerationFailed,
		fmt.Sprintf("failed after %d attempts", maxRetries), lastErr)
}

// backoffDelay is exponential in the attempt count with ~10% jitter,
// capped at 30 seconds.
func backoffDelay(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
	jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
	jitter := time.Duration(0)
	if jitterMax.Sign() > 0 {
		jitterBig, _ := rand.Int(rand.Reader, jitterMax)
		jitter = time.Duration(jitterBig.Int64())
	}
	return min(baseDelay+jitter, 30*time.Second)
}
