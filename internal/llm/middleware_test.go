package llm

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"midnightcourt/internal/llmclient"
)

func TestWithLoggingPassesThrough(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := &llmclient.MockClient{Responses: []string{`{"ok":true}`}}
	client := Chain(base, WithLogging(zap.New(core)))

	ctx := WithOperation(context.Background(), "generate")
	resp, err := client.Generate(ctx, llmclient.Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(resp.Payload()) != `{"ok":true}` {
		t.Fatalf("payload altered: %s", resp.Payload())
	}
	if logs.FilterMessage("llm request").Len() != 1 || logs.FilterMessage("llm response").Len() != 1 {
		t.Fatal("request/response not logged")
	}
}

func TestWithLoggingLogsErrors(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	boom := errors.New("quota")
	base := &llmclient.MockClient{Fn: func(context.Context, llmclient.Request) (llmclient.Response, error) {
		return llmclient.Response{}, boom
	}}
	client := WithLogging(zap.New(core))(base)

	if _, err := client.Generate(context.Background(), llmclient.Request{}); !errors.Is(err, boom) {
		t.Fatalf("error not propagated: %v", err)
	}
	if logs.FilterMessage("llm error").Len() != 1 {
		t.Fatal("error not logged")
	}
}

func TestOperationFromDefault(t *testing.T) {
	if got := OperationFrom(context.Background()); got != "unknown" {
		t.Fatalf("got %q", got)
	}
}
