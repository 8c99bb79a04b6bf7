package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"

	"github.com/AverniteDF/poe-bot-server-wsgi/internal/config"
	"github.com/AverniteDF/poe-bot-server-wsgi/internal/handlers"
	"github.com/AverniteDF/poe-bot-server-wsgi/internal/middleware"
	"github.com/AverniteDF/poe-bot-server-wsgi/internal/router"
	"github.com/AverniteDF/poe-bot-server-wsgi/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log.SetHandler(text.New(os.Stderr))
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	log.WithFields(log.Fields{
		"bot":        cfg.BotName,
		"access_key": config.MaskKey(cfg.AccessKey),
		"env":        cfg.Env,
	}).Info("starting bot server")

	// ──── Step 2: Initialize Services ────
	echoService := services.NewEchoService()

	var relayService *services.RelayService
	if cfg.RelayEnabled() {
		relayService = services.NewRelayService(
			cfg.RelayBotName,
			cfg.RelayBotURL,
			cfg.RelayAccessKey,
			time.Duration(cfg.RelayTimeoutSeconds)*time.Second,
		)
		log.WithFields(log.Fields{
			"bot":     cfg.RelayBotName,
			"url":     cfg.RelayBotURL,
			"timeout": cfg.RelayTimeoutSeconds,
		}).Info("forward mode enabled")
	} else {
		log.Info("echo mode enabled (no relay bot configured)")
	}

	// ──── Step 3: Initialize Handlers ────
	auth := middleware.NewAccessKeyAuth(cfg.AccessKey)

	var webhookHandler *handlers.WebhookHandler
	if relayService != nil {
		webhookHandler = handlers.NewWebhookHandler(cfg.BotName, cfg.AccessKey, echoService, relayService)
	} else {
		webhookHandler = handlers.NewWebhookHandler(cfg.BotName, cfg.AccessKey, echoService, nil)
	}

	// ──── Step 4: Start HTTP Server ────
	r := router.New(auth, webhookHandler, cfg.RateLimitPerMinute)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.RelayTimeoutSeconds+5) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.WithField("addr", server.Addr).Infof("%s ready", cfg.BotName)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.WithError(err).Fatal("server error")
	}
}
