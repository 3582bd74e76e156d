package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/speaker-diarize/backend/internal/api"
	"github.com/speaker-diarize/backend/internal/auth"
	"github.com/speaker-diarize/backend/internal/config"
	"github.com/speaker-diarize/backend/internal/db"
	"github.com/speaker-diarize/backend/internal/gpu"
	"github.com/speaker-diarize/backend/internal/job"
	"github.com/speaker-diarize/backend/internal/pipeline"
	"github.com/speaker-diarize/backend/internal/transcript"
)

func main() {
	cfg := config.Load()

	// Ensure working directories exist
	os.MkdirAll(cfg.DataPath, 0755)
	os.MkdirAll(cfg.UploadPath, 0755)
	os.MkdirAll(cfg.OutputPath, 0755)

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Ensure admin user exists
	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Admin user ensured: %s", cfg.AdminUsername)

	// Correction rules: stock table, or a YAML override
	corrector := transcript.NewCorrector()
	if cfg.CorrectionsPath != "" {
		rules, err := transcript.LoadRules(cfg.CorrectionsPath)
		if err != nil {
			log.Fatalf("Failed to load correction rules: %v", err)
		}
		corrector = transcript.NewCorrectorWithRules(rules)
		log.Printf("Loaded %d correction rules from %s", len(rules), cfg.CorrectionsPath)
	}

	// Pipeline engines
	service := pipeline.NewService(cfg.OutputPath, corrector, gpu.Device())
	if cfg.WhisperXURL != "" {
		service.Register(pipeline.NewHTTPRunner(cfg.WhisperXURL))
	}
	if cfg.TranscribeCmd != "" {
		service.Register(pipeline.NewSubprocessRunner(cfg.TranscribeCmd))
	}
	service.Register(pipeline.NewDemoRunner(2 * time.Second))
	if !service.HasEngine(cfg.Engine) {
		log.Fatalf("Default engine %q is not configured (available: %v)", cfg.Engine, service.Engines())
	}

	// Job queue
	queue := job.NewQueue(database.DB(), cfg.JobWorkers)
	queue.SetHandler(service.HandleJob)
	defer queue.Stop()

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Create router
	router := api.NewRouter(database, jwtService, cfg, queue, service)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting server on %s", addr)
	log.Printf("Upload path: %s, output path: %s, default engine: %s", cfg.UploadPath, cfg.OutputPath, cfg.Engine)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		queue.Stop()
		database.Close()
		os.Exit(0)
	}()

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
