// Command api serves the Midnight Court slide pipeline over HTTP: input
// analysis, deck generation, refinement, HTML rendering and image search.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"midnightcourt/internal/generator"
	"midnightcourt/internal/imagesearch"
	"midnightcourt/internal/llm"
	"midnightcourt/internal/llmclient"
	"midnightcourt/internal/refine"
	"midnightcourt/internal/render"
	"midnightcourt/internal/server"
)

func main() {
	addr := flag.String("port", "", "listen address, overrides PORT")
	flag.Parse()

	_ = godotenv.Load()

	log, err := buildLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := buildLLMClient(ctx, log)
	if err != nil {
		log.Fatal("llm client init failed", zap.Error(err))
	}
	defer client.Close()

	app := &app{
		log:       log,
		llm:       client,
		generator: generator.New(client, log),
		refiner:   refine.NewEngine(log),
		renderer:  render.NewRenderer(&render.HTTPFetcher{}, log),
		images:    buildImageSearch(log),
	}

	srv := server.New(listenAddr(*addr), app.routes(), log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}
}

func buildLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildLLMClient picks a provider from LLM_PROVIDER (gemini, openai, mock)
// and wraps it in the logging middleware. Gemini is the default.
func buildLLMClient(ctx context.Context, log *zap.Logger) (llmclient.Client, error) {
	var (
		base llmclient.Client
		err  error
	)
	switch strings.ToLower(os.Getenv("LLM_PROVIDER")) {
	case "openai":
		base, err = llmclient.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_MODEL"))
	case "mock":
		base = &llmclient.MockClient{}
	default:
		base, err = llmclient.NewGeminiClient(ctx, os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	}
	if err != nil {
		return nil, err
	}
	log.Info("llm provider ready", zap.String("provider", base.Name()))
	return llm.Chain(base, llm.WithLogging(log)), nil
}

// buildImageSearch returns the first configured provider, or nil when no
// key is set; the handler reports image search as unavailable in that case.
func buildImageSearch(log *zap.Logger) imagesearch.Client {
	if key := os.Getenv("PEXELS_API_KEY"); key != "" {
		c, err := imagesearch.NewPexelsClient(key, nil)
		if err == nil {
			log.Info("image search ready", zap.String("source", c.Source()))
			return c
		}
	}
	if key := os.Getenv("UNSPLASH_ACCESS_KEY"); key != "" {
		c, err := imagesearch.NewUnsplashClient(key, nil)
		if err == nil {
			log.Info("image search ready", zap.String("source", c.Source()))
			return c
		}
	}
	log.Info("image search disabled, no provider key configured")
	return nil
}

func listenAddr(flagAddr string) string {
	if flagAddr != "" {
		return normalizeAddr(flagAddr)
	}
	if p := os.Getenv("PORT"); p != "" {
		return normalizeAddr(p)
	}
	return ":8080"
}

func normalizeAddr(s string) string {
	if strings.Contains(s, ":") {
		return s
	}
	return ":" + s
}
