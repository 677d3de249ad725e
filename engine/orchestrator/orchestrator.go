package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/wishub-ai/wishub-mcp/engine/core"
	"github.com/wishub-ai/wishub-mcp/engine/infra/cache"
	llmadapter "github.com/wishub-ai/wishub-mcp/engine/llm/adapter"
	"github.com/wishub-ai/wishub-mcp/engine/mcp"
	"github.com/wishub-ai/wishub-mcp/pkg/config"
	"github.com/wishub-ai/wishub-mcp/pkg/logger"
)

// Invocation outcomes reported to metrics. Every invocation records exactly
// one of these, whichever stage it terminates in.
const (
	OutcomeSuccess = "success"
	OutcomeCached  = "cached"
	OutcomeError   = "error"
)

// tokenBudgetRatio is the share of max_tokens the input may consume; the
// remainder stays reserved for the completion.
const tokenBudgetRatio = 0.9

const defaultRetryBackoffBase = 100 * time.Millisecond

// ContextProvider fetches the knowledge document an invocation is grounded
// in. Implemented by the WisHub Core client.
type ContextProvider interface {
	GetKnowledgeContext(ctx context.Context, contextID string, contextType mcp.ContextType) (map[string]any, error)
}

// InvocationRecorder receives one outcome per completed invocation.
type InvocationRecorder interface {
	RecordInvocation(
		ctx context.Context,
		model string,
		status string,
		duration time.Duration,
		promptTokens int,
		completionTokens int,
		totalTokens int,
	)
}

// RetryConfig controls optional retries around the generation call. Zero
// attempts keeps single-call semantics: one upstream failure is terminal.
type RetryConfig struct {
	Attempts    int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// RetryFromAppConfig extracts the generation retry settings.
func RetryFromAppConfig(cfg *config.Config) RetryConfig {
	return RetryConfig{
		Attempts:    cfg.LLM.RetryAttempts,
		BackoffBase: cfg.LLM.RetryBackoffBase,
		BackoffMax:  cfg.LLM.RetryBackoffMax,
	}
}

// Orchestrator runs the invocation pipeline: resolve the adapter, fetch the
// knowledge context, consult the fingerprint cache, enforce the token
// budget, generate, store, and record the outcome. Every expected failure
// becomes a structured response; Invoke never returns a Go error.
type Orchestrator struct {
	registry *llmadapter.Registry
	contexts ContextProvider
	cache    *cache.ResponseCache
	metrics  InvocationRecorder
	retry    RetryConfig
}

// New builds an orchestrator over its collaborators. cache and metrics may
// be nil; the pipeline then runs uncached and unrecorded.
func New(
	registry *llmadapter.Registry,
	contexts ContextProvider,
	responseCache *cache.ResponseCache,
	metrics InvocationRecorder,
	retryCfg RetryConfig,
) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		contexts: contexts,
		cache:    responseCache,
		metrics:  metrics,
		retry:    retryCfg,
	}
}

// invocationResult is the terminal state of one pipeline run.
type invocationResult struct {
	resp             *mcp.InvokeResponse
	outcome          string
	promptTokens     int
	completionTokens int
	totalTokens      int
}

// Invoke executes the pipeline for one validated request. The caller is
// responsible for Normalize/Validate; Invoke assumes bounds hold.
func (o *Orchestrator) Invoke(ctx context.Context, req *mcp.InvokeRequest) *mcp.InvokeResponse {
	start := time.Now()
	log := logger.FromContext(ctx).With(
		"invocation_id", uuid.NewString(),
		"model_id", req.ModelID,
		"context_id", req.ContextID,
	)
	ctx = logger.ContextWithLogger(ctx, log)
	res := o.run(ctx, req)
	if o.metrics != nil {
		o.metrics.RecordInvocation(
			ctx,
			req.ModelID,
			res.outcome,
			time.Since(start),
			res.promptTokens,
			res.completionTokens,
			res.totalTokens,
		)
	}
	return res.resp
}

// run executes the stages. A recover at this boundary turns any panic into
// an internal-error response so no fault escapes untyped.
func (o *Orchestrator) run(ctx context.Context, req *mcp.InvokeRequest) (res invocationResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error("invocation pipeline panicked", "panic", r)
			res = errorResult(core.CodeInternal, "internal error during invocation", fmt.Sprintf("%v", r))
		}
	}()

	log := logger.FromContext(ctx)
	maxTokens := *req.MaxTokens
	temperature := *req.Temperature

	// Stage 1: resolve the adapter.
	adapter, err := o.registry.Get(req.ModelID)
	if err != nil {
		log.Warn("no adapter registered for model", "error", err)
		return errorResult(core.CodeModelNotFound,
			fmt.Sprintf("model %s is not supported", req.ModelID), err.Error())
	}

	// Stage 2: fetch the knowledge context.
	contextData, err := o.contexts.GetKnowledgeContext(ctx, req.ContextID, req.ContextType)
	if err != nil {
		log.Warn("knowledge context fetch failed", "context_type", req.ContextType, "error", err)
		return errorResult(core.CodeContextFetchFailed,
			fmt.Sprintf("failed to fetch context %s", req.ContextID), err.Error())
	}
	contextString := llmadapter.ContextSection(contextData)

	// Stage 3: fingerprint cache lookup.
	var cacheKey string
	if o.cache != nil {
		cacheKey = o.cache.Key(req.ModelID, req.Prompt, contextData, temperature, maxTokens)
		if entry, ok := o.cache.Get(ctx, cacheKey); ok {
			log.Debug("serving invocation from cache")
			return invocationResult{
				resp: &mcp.InvokeResponse{
					Status:     mcp.StatusSuccess,
					Context:    contextData,
					Response:   entry.Response,
					TokensUsed: entry.TokensUsed,
					Cached:     true,
				},
				outcome:     OutcomeCached,
				totalTokens: entry.TokensUsed,
			}
		}
	}

	// Stage 4: token budget. Counting failures degrade to zero so a broken
	// tokenizer never blocks generation.
	inputTokens := o.countTokens(ctx, adapter, req.Prompt, "prompt") +
		o.countTokens(ctx, adapter, contextString, "context")
	if float64(inputTokens) > tokenBudgetRatio*float64(maxTokens) {
		log.Warn("input exceeds token budget", "input_tokens", inputTokens, "max_tokens", maxTokens)
		return errorResult(core.CodeTokenLimit,
			"input exceeds the token budget for this request",
			fmt.Sprintf("input tokens %d exceed %.0f%% of max_tokens %d",
				inputTokens, tokenBudgetRatio*100, maxTokens))
	}

	// Stage 5: generate.
	response, err := o.generate(ctx, adapter, req.Prompt, contextData, maxTokens, temperature)
	if err != nil {
		log.Error("generation failed", "error", err)
		res = errorResult(core.CodeInternal, "generation failed", err.Error())
		res.promptTokens = inputTokens
		return res
	}

	// Stage 6: count output tokens and write through to the cache.
	outputTokens := o.countTokens(ctx, adapter, response, "response")
	totalTokens := inputTokens + outputTokens
	if o.cache != nil && cacheKey != "" {
		entry := &cache.CachedResponse{Response: response, TokensUsed: totalTokens}
		if err := o.cache.Set(ctx, cacheKey, entry); err != nil {
			log.Warn("cache write failed, response not memoized", "error", err)
		}
	}

	return invocationResult{
		resp: &mcp.InvokeResponse{
			Status:     mcp.StatusSuccess,
			Context:    contextData,
			Response:   response,
			TokensUsed: totalTokens,
		},
		outcome:          OutcomeSuccess,
		promptTokens:     inputTokens,
		completionTokens: outputTokens,
		totalTokens:      totalTokens,
	}
}

// generate calls the adapter, optionally wrapped in exponential-backoff
// retries when the deployment configures them.
func (o *Orchestrator) generate(
	ctx context.Context,
	adapter llmadapter.Adapter,
	prompt string,
	contextData map[string]any,
	maxTokens int,
	temperature float64,
) (string, error) {
	if o.retry.Attempts <= 0 {
		return adapter.Generate(ctx, prompt, contextData, maxTokens, temperature)
	}
	base := o.retry.BackoffBase
	if base <= 0 {
		base = defaultRetryBackoffBase
	}
	backoff := retry.NewExponential(base)
	if o.retry.BackoffMax > 0 {
		backoff = retry.WithCappedDuration(o.retry.BackoffMax, backoff)
	}
	backoff = retry.WithMaxRetries(uint64(o.retry.Attempts), backoff)
	var out string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		text, err := adapter.Generate(ctx, prompt, contextData, maxTokens, temperature)
		if err != nil {
			return retry.RetryableError(err)
		}
		out = text
		return nil
	})
	return out, err
}

func (o *Orchestrator) countTokens(ctx context.Context, adapter llmadapter.Adapter, text, segment string) int {
	if text == "" {
		return 0
	}
	n, err := adapter.CountTokens(ctx, text)
	if err != nil {
		logger.FromContext(ctx).Warn("token counting failed, treating as zero", "segment", segment, "error", err)
		return 0
	}
	return n
}

func errorResult(code, message, details string) invocationResult {
	return invocationResult{
		resp: &mcp.InvokeResponse{
			Status:  mcp.StatusError,
			Message: message,
			Error:   &mcp.ErrorInfo{Code: code, Details: details},
		},
		outcome: OutcomeError,
	}
}
