// Command api serves the daily and weekly reports over HTTP. Inside Lambda it
// runs behind an API Gateway HTTP API; elsewhere it listens on SERVER_ADDRESS.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance-backend/infrastructure/config"
	"attendance-backend/infrastructure/di"
	"attendance-backend/interfaces/http/rest"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Ignoring .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	var metrics http.Handler
	if cfg.MetricsProvider == config.MetricsPrometheus {
		metrics = container.Collector.Handler()
	}

	router := rest.NewRouter(
		container.DailyReport,
		container.WeeklyReport,
		metrics,
		cfg.CORSAllowedOrigins,
		cfg.IsDevelopment(),
		container.Logger,
	)
	handler := router.Setup()

	if cfg.IsLambda {
		startLambda(container, handler)
		return
	}

	if cfg.AutoCreateTables {
		if err := container.Provision(ctx); err != nil {
			container.Logger.Fatal("Failed to provision resources", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("storage", cfg.StorageBackend),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := container.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shut down tracing: %v", err)
	}

	log.Println("Server stopped")
}

func startLambda(container *di.Container, handler http.Handler) {
	mux, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	adapter := chiadapter.NewV2(mux)

	lambda.Start(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		defer container.Flush(ctx)

		resp, err := adapter.ProxyWithContextV2(ctx, req)
		if resp.StatusCode >= http.StatusInternalServerError {
			container.Logger.Error("Lambda error response",
				zap.String("path", req.RequestContext.HTTP.Path),
				zap.String("request_id", req.RequestContext.RequestID),
				zap.Int("status_code", resp.StatusCode),
			)
		}
		return resp, err
	})
}
