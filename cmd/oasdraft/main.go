package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/oasdraft/oasdraft/configs"
	"github.com/oasdraft/oasdraft/internal/adapter/inbound/httpapi"
	"github.com/oasdraft/oasdraft/internal/adapter/outbound/filestore"
	"github.com/oasdraft/oasdraft/internal/adapter/outbound/memstore"
	"github.com/oasdraft/oasdraft/internal/adapter/outbound/openapicompat"
	"github.com/oasdraft/oasdraft/internal/usecase"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Configuration ===
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// === Logging ===
	logLevel := cfg.ParsedLogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	logger.Info("Logger initialized.", slog.String("level", logLevel.String()))

	// === OpenTelemetry Initialization ===
	shutdownOtel, err := initOtelProvider(cfg)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry.", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
		}
	}()

	// === Dependency Injection ===
	logger.Info("Initializing dependencies.")

	var store usecase.SectionStore
	if cfg.StorageDir != "" {
		fileStore, err := filestore.New(cfg.StorageDir, logger)
		if err != nil {
			logger.Error("Failed to initialize file store.", slog.Any("error", err))
			os.Exit(1)
		}
		store = fileStore
		logger.Info("Using file-backed section store.", slog.String("dir", cfg.StorageDir))
	} else {
		store = memstore.New(logger)
		logger.Info("Using in-memory section store; drafts will not survive restarts.")
	}

	persist := usecase.NewPersistence(store, logger)
	controller := usecase.NewSyncController(persist, cfg.DebounceInterval, logger)

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	fetcher := openapicompat.NewFetcher(httpClient, logger)

	importUC := usecase.NewImportDocumentUseCase(controller, logger)
	exportUC := usecase.NewExportDocumentUseCase(controller, logger)
	syncUC := usecase.NewSyncSourceUseCase(fetcher, controller, logger)

	// === Seed from persisted sections ===
	// Persisted sections take precedence over anything supplied at startup;
	// in-progress work must never be clobbered by a stale initial value.
	sections := persist.LoadAll(ctx)
	controller.Seed(sections)
	logger.Info("Editing state seeded from persisted sections.")

	// === Initial source sync ===
	if len(cfg.ImportSources) > 0 {
		logger.Info("Importing configured sources.", slog.Int("count", len(cfg.ImportSources)))
		if err := syncUC.ExecuteAll(ctx, cfg.ImportSources); err != nil {
			logger.Error("Initial source import failed; continuing with persisted state.", slog.Any("error", err))
		}
	}

	// === HTTP Server ===
	mux := http.NewServeMux()
	handlers := httpapi.NewHandlers(controller, persist, importUC, exportUC, syncUC, logger)
	handlers.RegisterRoutes(mux)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	go func() {
		logger.Info("HTTP server starting.", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed.", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	// === Server Shutdown ===
	logger.Info("Shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Flush pending edits so nothing typed in the last debounce window is
	// lost on the way out.
	controller.Flush(shutdownCtx)

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed.", slog.Any("error", err))
	}
	logger.Info("Shut down gracefully.")
}

// initOtelProvider initializes the OpenTelemetry SDK and sets up the OTLP
// trace exporter. It returns a shutdown function to be called on exit.
func initOtelProvider(cfg *configs.Config) (func(context.Context) error, error) {
	ctx := context.Background()

	if cfg.OtelExporterOtlpEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, OpenTelemetry tracing disabled.")
		return func(context.Context) error { return nil }, nil
	}

	slog.Info("Initializing OTLP exporter.", slog.String("endpoint", cfg.OtelExporterOtlpEndpoint))

	grpcOpts := []grpc.DialOption{}
	if cfg.OtelExporterOtlpInsecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		slog.Warn("Using insecure connection for OTLP exporter.")
	}

	conn, err := grpc.NewClient(cfg.OtelExporterOtlpEndpoint, grpcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTLP endpoint: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("oasdraft"),
		),
	)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(r),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	slog.Info("OpenTelemetry TracerProvider configured.")

	return func(ctx context.Context) error {
		providerErr := tp.Shutdown(ctx)
		connErr := conn.Close()
		return errors.Join(providerErr, connErr)
	}, nil
}
