package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/pressroom/article-pager/internal/application"
	"github.com/pressroom/article-pager/internal/config"
	"github.com/pressroom/article-pager/internal/logging"
	"github.com/pressroom/article-pager/internal/processor"
	"github.com/pressroom/article-pager/internal/storage"
)

var signalNotify = signal.Notify

func main() {
	app := kingpin.New("article-pager", "Article Pager - paginates articles and computes the payment due")

	serveCmd := app.Command("serve", "Run the HTTP service")
	configFile := serveCmd.Flag("config", "Path to YAML configuration file").String()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	wordsPerLine := serveCmd.Flag("words-per-line", "Number of words per rendered line").Default("0").Int()
	linesPerPage := serveCmd.Flag("lines-per-page", "Number of lines per page").Default("0").Int()
	tiersStr := serveCmd.Flag("payment-tiers", "Payment schedule, e.g. 0-0:0,1-2:30,3-4:60,5+:100").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	processCmd := app.Command("process", "Paginate a single article and print the report")
	articleFile := processCmd.Flag("file", "Article file to process (defaults to stdin)").String()
	processWPL := processCmd.Flag("words-per-line", "Number of words per rendered line").Default("0").Int()
	processLPP := processCmd.Flag("lines-per-page", "Number of lines per page").Default("0").Int()
	processTiers := processCmd.Flag("payment-tiers", "Payment schedule, e.g. 0-0:0,1-2:30,3-4:60,5+:100").String()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	switch command {
	case serveCmd.FullCommand():
		overrides := &config.CLIOverrides{ConfigFile: *configFile}
		if *port != "" {
			overrides.Port = port
		}
		if *wordsPerLine > 0 {
			overrides.WordsPerLine = wordsPerLine
		}
		if *linesPerPage > 0 {
			overrides.LinesPerPage = linesPerPage
		}
		if *tiersStr != "" {
			overrides.TiersStr = tiersStr
		}
		if *rateLimitRPSFlag >= 0 {
			overrides.RateLimitRPS = rateLimitRPSFlag
		}
		if *rateLimitBurstFlag >= 0 {
			overrides.RateLimitBurst = rateLimitBurstFlag
		}
		serve(overrides)

	case processCmd.FullCommand():
		overrides := &config.CLIOverrides{}
		if *processWPL > 0 {
			overrides.WordsPerLine = processWPL
		}
		if *processLPP > 0 {
			overrides.LinesPerPage = processLPP
		}
		if *processTiers != "" {
			overrides.TiersStr = processTiers
		}
		os.Exit(processArticle(overrides, *articleFile, os.Stdin, os.Stdout))
	}
}

func serve(overrides *config.CLIOverrides) {
	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// processArticle runs the one-shot pipeline: the report goes to out, all
// diagnostics go to the console logger on stderr. Returns the process exit code.
func processArticle(overrides *config.CLIOverrides, path string, in io.Reader, out io.Writer) int {
	logger, err := logging.NewConsole()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := config.Load(overrides)
	if err != nil {
		logger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	reader := in
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			logger.Error("failed to open article file", zap.Error(err))
			return 1
		}
		defer f.Close()
		reader = f
	}

	text, err := io.ReadAll(reader)
	if err != nil {
		logger.Error("failed to read article", zap.Error(err))
		return 1
	}

	store := storage.NewMemoryStorage()
	if err := store.SetSettings(cfg.Settings()); err != nil {
		logger.Error("failed to apply settings", zap.Error(err))
		return 1
	}

	report, err := processor.New(store, logger).Process(string(text))
	if err != nil {
		logger.Error("failed to process article", zap.Error(err))
		return 1
	}

	if err := report.WriteText(out); err != nil {
		logger.Error("failed to write report", zap.Error(err))
		return 1
	}
	return 0
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
