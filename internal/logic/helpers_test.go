package logic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"journal-backend/internal/auth"
	"journal-backend/internal/db"
)

// stubLLM is an llms.Model that answers every prompt with response or err.
type stubLLM struct {
	mu          sync.Mutex
	response    string
	err         error
	prompts     []string
	temperature float64
}

func (s *stubLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.temperature = opts.Temperature
	for _, m := range messages {
		for _, part := range m.Parts {
			if text, ok := part.(llms.TextContent); ok {
				s.prompts = append(s.prompts, text.Text)
			}
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s.response}}}, nil
}

func (s *stubLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, s, prompt, options...)
}

func (s *stubLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// stubAnalyzer returns a fixed Analysis or err and counts calls.
type stubAnalyzer struct {
	analysis Analysis
	err      error
	called   int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, text string) (*Analysis, error) {
	s.called++
	if s.err != nil {
		return nil, s.err
	}
	a := s.analysis
	return &a, nil
}

const goodResponse = "```json\n{\"sentimentScore\": 6, \"counsel\": \"Keep noticing the small wins.\"}\n```"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(&db.Config{Driver: db.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() { _ = db.Close(conn) })
	return conn
}

func createUser(t *testing.T, conn *gorm.DB, id uint64) *db.User {
	t.Helper()
	user := &db.User{ID: id, Name: "测试用户", Email: fmt.Sprintf("user%d@example.com", id), PasswordHash: "x"}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func countEntries(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&db.JournalEntry{}).Count(&n).Error)
	return n
}

var errDiskFull = errors.New("disk I/O error")

// failJournalInserts makes every insert into journal_entries fail.
func failJournalInserts(t *testing.T, conn *gorm.DB) {
	t.Helper()
	err := conn.Callback().Create().Before("gorm:create").Register("test:fail_journal_insert", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "journal_entries" {
			_ = tx.AddError(errDiskFull)
		}
	})
	require.NoError(t, err)
}

// 设置测试环境
func setupTestRouter(t *testing.T, llm *stubLLM) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := newTestDB(t)
	analyzer, err := NewLLMAnalyzer(llm)
	require.NoError(t, err)

	logger := zap.NewNop()
	router := SetupRouter(&Server{
		DB:      conn,
		Entries: NewEntryService(analyzer, logger),
		Tokens:  auth.NewTokenIssuer([]byte("test-secret"), time.Hour),
		Logger:  logger,
	})
	return router, conn
}
