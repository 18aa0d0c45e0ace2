package generator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// TextGenerator produces one reply for source shaped by modifier.
// Implementations must be safe for concurrent use.
type TextGenerator interface {
	Generate(ctx context.Context, source, modifier string) (string, error)
}

// Agent 负责把原文和变体说明组装成提示词并调用模型。
type Agent struct {
	llm         LLMClient
	temperature float64
	timeout     time.Duration
	logger      *zap.SugaredLogger
}

// AgentOption customises an Agent.
type AgentOption func(*Agent)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) AgentOption {
	return func(a *Agent) { a.temperature = t }
}

// WithTimeout bounds every Generate call. Zero disables the bound.
func WithTimeout(d time.Duration) AgentOption {
	return func(a *Agent) { a.timeout = d }
}

// WithLogger sets the agent logger.
func WithLogger(l *zap.SugaredLogger) AgentOption {
	return func(a *Agent) { a.logger = l }
}

func NewAgent(llm LLMClient, opts ...AgentOption) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	a := &Agent{
		llm:         llm,
		temperature: CreativityTemperature("low"),
		timeout:     60 * time.Second,
		logger:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Generate 生成一条回复；失败统一包装为 GenerationError。
func (a *Agent) Generate(ctx context.Context, source, modifier string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	temp := a.temperature
	prompt := BuildReplyPrompt(source, modifier, &temp)

	start := time.Now()
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		a.logger.Warnw("reply generation failed", "error", err, "elapsed", time.Since(start))
		return "", &GenerationError{Err: err}
	}
	reply, err := PostProcess(raw)
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	a.logger.Debugw("reply generated", "chars", len(reply), "elapsed", time.Since(start))
	return reply, nil
}
