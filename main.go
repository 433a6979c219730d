package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"zenthra/api"
	"zenthra/api/openapi"
)

func main() {
	args, err := ParseArgs()
	if err != nil {
		slog.Error("Fail to parse arguments", slog.Any("error", err))
		os.Exit(1)
	}
	if err := args.Validate(); err != nil {
		slog.Error("Invalid arguments", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: args.LogLevel})))

	server, err := api.NewServer(args.ServerConfig)
	if err != nil {
		slog.Error("Fail to create server", slog.Any("error", err))
		os.Exit(1)
	}
	defer server.Close()
	if err := server.Start(); err != nil {
		slog.Error("Fail to start server", slog.Any("error", err))
		return
	}

	router := gin.New()
	// strict handler 收到的是 gin.Context，讓它在客戶端斷線時跟著 request context 結束
	router.ContextWithFallback = true
	router.Use(gin.Recovery(), server.ErrorMiddleware())
	handler := openapi.NewStrictHandler(server, nil)
	openapi.RegisterHandlersWithOptions(router, handler, server.GinServerOptions())
	httpServer := &http.Server{
		Addr:              args.ServerURL,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		slog.Info("Listen", slog.String("addr", args.ServerURL), slog.String("id", args.ServerConfig.ID))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Fail to shutdown http server", slog.Any("error", err))
	}
}
