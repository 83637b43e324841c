package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linegpt/relay/internal/config"
	"github.com/linegpt/relay/internal/line"
	"github.com/linegpt/relay/internal/llm"
	"github.com/linegpt/relay/internal/logger"
	"github.com/linegpt/relay/internal/pipeline"
	"github.com/linegpt/relay/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	if cfg.Line.ChannelSecret == "" {
		logger.L.Error("line.channel_secret is not set")
		os.Exit(1)
	}
	if cfg.Line.ChannelAccessToken == "" {
		logger.L.Error("line.channel_access_token is not set")
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" {
		logger.L.Error("llm.api_key is not set")
		os.Exit(1)
	}

	st, err := store.Open(cfg.History.Backend, cfg.History.Path)
	if err != nil {
		logger.L.Error("failed to open message store", "backend", cfg.History.Backend, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	invoker := llm.NewInvoker(llm.NewClient(cfg.LLM), cfg.LLM.Model, cfg.LLM.SystemPrompts)
	lineClient := line.NewClient(cfg.Line.APIBase, cfg.Line.ChannelAccessToken)
	fanout := pipeline.NewFanout(pipeline.New(st, invoker, lineClient, cfg.History.WindowSize))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			logger.L.Error("read body error", "error", err)
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}

		// Reject the whole delivery before any pipeline runs.
		if !line.ValidateSignature(cfg.Line.ChannelSecret, body, r.Header.Get("x-line-signature")) {
			logger.L.Warn("invalid webhook signature")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		var hook line.Webhook
		if err := json.Unmarshal(body, &hook); err != nil {
			logger.L.Error("webhook parse error", "error", err)
			http.Error(w, "malformed webhook body", http.StatusBadRequest)
			return
		}
		logger.L.Info("webhook delivery received", "events", len(hook.Events))

		outcomes := fanout.Process(r.Context(), hook.Events)
		for i, out := range outcomes {
			switch {
			case out.Err != nil:
				logger.L.Error("event failed", "index", i, "stage", out.Stage, "user_id", out.UserID, "error", out.Err)
			case out.Skipped:
				logger.L.Debug("event skipped", "index", i)
			default:
				logger.L.Info("event handled", "index", i, "user_id", out.UserID)
			}
		}

		// The platform cannot act on per-event detail; acknowledge receipt.
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: mux,
	}

	go func() {
		logger.L.Info("starting server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.L.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.L.Error("shutdown error", "error", err)
	}
}
