// Package llm layers cross-cutting concerns over an llmclient.Client via
// decorator middlewares, keeping provider wrappers focused on the API call.
package llm

import (
	"context"

	"go.uber.org/zap"

	"midnightcourt/internal/llmclient"
)

// Middleware decorates a client.
type Middleware func(next llmclient.Client) llmclient.Client

// Chain applies middlewares outermost-first.
func Chain(base llmclient.Client, mws ...Middleware) llmclient.Client {
	out := base
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

type ctxKeyOperation struct{}

// WithOperation tags the context with the pipeline operation driving the
// call (generate, refine, citations); logging picks it up.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, ctxKeyOperation{}, op)
}

// OperationFrom returns the operation stored in the context.
func OperationFrom(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyOperation{}).(string); ok {
		return s
	}
	return "unknown"
}

// WithLogging logs request sizes and errors through the injected logger.
func WithLogging(log *zap.Logger) Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next llmclient.Client) llmclient.Client {
		return &logging{next: next, log: log}
	}
}

type logging struct {
	next llmclient.Client
	log  *zap.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Generate(ctx context.Context, req llmclient.Request) (llmclient.Response, error) {
	op := OperationFrom(ctx)
	l.log.Debug("llm request",
		zap.String("client", l.next.Name()),
		zap.String("operation", op),
		zap.Int("prompt_bytes", len(req.Prompt)))
	resp, err := l.next.Generate(ctx, req)
	if err != nil {
		l.log.Error("llm error",
			zap.String("client", l.next.Name()),
			zap.String("operation", op),
			zap.Error(err))
		return resp, err
	}
	l.log.Debug("llm response",
		zap.String("client", l.next.Name()),
		zap.String("operation", op),
		zap.Int("output_bytes", len(resp.Payload())))
	return resp, nil
}
