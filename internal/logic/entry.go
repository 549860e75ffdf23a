package logic

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"journal-backend/internal/db"
)

// EntryService analyses journal entries and stores them for their author.
type EntryService struct {
	analyzer Analyzer
	logger   *zap.Logger
	now      func() time.Time
}

func NewEntryService(analyzer Analyzer, logger *zap.Logger) *EntryService {
	return &EntryService{analyzer: analyzer, logger: logger, now: time.Now}
}

// SubmitEntry analyses text and inserts one JournalEntry owned by user.
// The analysis is returned only once the row is committed.
func (s *EntryService) SubmitEntry(ctx context.Context, conn *gorm.DB, user *db.User, text string, status db.EntryStatus) (*Analysis, error) {
	if text == "" {
		return nil, newError(ErrBadRequest, nil, "Entry text cannot be empty.")
	}

	analysis, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		s.logger.Warn("analysis failed", zap.Uint64("user_id", user.ID), zap.Error(err))
		return nil, newError(ErrUpstreamAnalysis, err, "Failed to get a structured response from the AI: %v", err)
	}

	now := s.now()
	score := int16(analysis.SentimentScore)
	entry := db.JournalEntry{
		UserID:         user.ID,
		EntryDate:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Text:           text,
		SentimentScore: &score,
		EntryStatus:    status,
		WordCount:      len(strings.Fields(text)),
		AISuggestion:   datatypes.JSONMap{"counsel": analysis.Counsel},
	}
	err = conn.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&entry).Error
	})
	if err != nil {
		s.logger.Error("failed to save journal entry", zap.Uint64("user_id", user.ID), zap.Error(err))
		return nil, newError(ErrPersistence, err, "Failed to save the entry to the database: %v", err)
	}

	s.logger.Info("journal entry saved",
		zap.Uint64("user_id", user.ID),
		zap.Uint64("entry_id", entry.ID),
		zap.Int("word_count", entry.WordCount))
	return analysis, nil
}
