package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"journal-backend/internal/auth"
	"journal-backend/internal/common"
	"journal-backend/internal/db"
	"journal-backend/internal/logic"
)

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := common.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	cfg.Print(logger)

	conn, err := db.InitDB(cfg.DB, logger)
	if err != nil {
		logger.Fatal("failed to initialise database", zap.Error(err))
	}
	defer func() { _ = db.Close(conn) }()

	model, err := logic.NewOpenAICompatibleLLM(cfg.LLMToken, cfg.LLMModel, cfg.LLMBaseURL)
	if err != nil {
		logger.Fatal("failed to create LLM client", zap.Error(err))
	}
	analyzer, err := logic.NewLLMAnalyzer(model)
	if err != nil {
		logger.Fatal("failed to create analyzer", zap.Error(err))
	}

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := logic.SetupRouter(&logic.Server{
		DB:      conn,
		Entries: logic.NewEntryService(analyzer, logger),
		Tokens:  auth.NewTokenIssuer([]byte(cfg.SessionSecret), cfg.SessionTTL),
		Logger:  logger,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info("server stopped")
}
