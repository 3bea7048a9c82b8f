package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decyphr-net/practice-engine/internal/config"
	"github.com/decyphr-net/practice-engine/internal/database"
	"github.com/decyphr-net/practice-engine/internal/exercise"
	"github.com/decyphr-net/practice-engine/internal/lexicon"
	"github.com/decyphr-net/practice-engine/internal/logger"
	"github.com/decyphr-net/practice-engine/internal/phrases"
	"github.com/decyphr-net/practice-engine/internal/practice"
	"github.com/decyphr-net/practice-engine/internal/scheduler"
	"github.com/decyphr-net/practice-engine/internal/scorestore"
	"github.com/decyphr-net/practice-engine/internal/server"
	"github.com/decyphr-net/practice-engine/internal/wordlist"
)

func main() {
	importPath := flag.String("import-wordlist", "", "import a CEFR word list (xlsx or csv) and exit")
	importLang := flag.String("import-language", "ga", "language code for the imported word list")
	flag.Parse()

	cfg := config.Load()

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	if err := database.Connect(); err != nil {
		lg.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	if *importPath != "" {
		runImport(lg, *importPath, *importLang)
		return
	}

	scores, err := scorestore.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		lg.Fatal("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
	}
	defer scores.Close()

	profiles := database.NewProfileRepository()
	attempts := database.NewAttemptRepository()
	stats := database.NewStatsRepository()
	words := database.NewWordRepository()
	cefr := database.NewCefrRepository()

	source := phrases.NewClient(cfg.PhraseSourceURL, lg)
	builder := exercise.NewBuilder()

	practiceSvc := practice.NewService(profiles, attempts, stats, source, builder, lg)
	ingestor := lexicon.NewIngestor(words, scores, lg)
	decay := lexicon.NewDecayEngine(scores, words)
	assessor := lexicon.NewAssessor(cefr, words, decay)

	jobs := scheduler.New(attempts, stats, cfg.StatsInterval, lg)
	// warm the aggregates so the progress endpoint is fresh before the
	// first tick
	jobs.RunOnce()
	jobs.Start()
	defer jobs.Stop()

	handler := server.NewHandler(practiceSvc, ingestor, decay, assessor, lg)
	router := server.NewRouter(handler)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		lg.Info("listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	lg.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown error", "error", err)
	}
}

func runImport(lg *logger.Logger, path, language string) {
	result, err := wordlist.ImportWordList(wordlist.DefaultImportConfig(path, language))
	if err != nil {
		lg.Fatal("word list import failed", "path", path, "error", err)
	}
	lg.Info("word list imported",
		"path", path,
		"language", language,
		"processed", result.TotalProcessed,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	for _, e := range result.Errors {
		lg.Warn("import row error", "detail", e)
	}
}
