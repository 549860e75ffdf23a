package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole int

const (
	RoleUser UserRole = iota
	RolePremiumUser
	RoleAdmin
)

func (r UserRole) Valid() bool {
	return r >= RoleUser && r <= RoleAdmin
}

// EntryStatus is the publication state of a journal entry.
type EntryStatus string

const (
	EntryStatusDraft     EntryStatus = "draft"
	EntryStatusPublished EntryStatus = "published"
	EntryStatusArchived  EntryStatus = "archived"
)

// ParseEntryStatus maps the wire value to an EntryStatus; empty means published.
func ParseEntryStatus(s string) (EntryStatus, error) {
	switch EntryStatus(s) {
	case "":
		return EntryStatusPublished, nil
	case EntryStatusDraft, EntryStatusPublished, EntryStatusArchived:
		return EntryStatus(s), nil
	}
	return "", fmt.Errorf("invalid entry_status %q: expected draft, published or archived", s)
}

type User struct {
	ID             uint64            `gorm:"primaryKey" json:"id"`
	Name           string            `gorm:"size:255;not null" json:"name"`
	Email          string            `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash   string            `gorm:"size:255;not null" json:"-"`
	BackgroundInfo datatypes.JSONMap `json:"background_info,omitempty"`
	Role           UserRole          `gorm:"not null;default:0" json:"role"`
	AvatarURL      *string           `gorm:"size:500" json:"avatar_url,omitempty"`
	Preferences    datatypes.JSONMap `json:"preferences,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	LastLogin      *time.Time        `json:"last_login,omitempty"`

	JournalEntries []JournalEntry `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	UserBadges     []UserBadge    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Streak         *Streak        `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Sessions       []Session      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

// Session is a login on one device. Token holds the signed bearer token.
type Session struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	UserID     uint64    `gorm:"not null;index" json:"user_id"`
	Token      string    `gorm:"size:512;not null;uniqueIndex" json:"-"`
	IssuedAt   time.Time `gorm:"not null" json:"issued_at"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
	Revoked    bool      `gorm:"not null;default:false" json:"revoked"`
	DeviceInfo *string   `gorm:"size:255" json:"device_info,omitempty"`
	IPAddress  *string   `gorm:"size:100" json:"ip_address,omitempty"`
}

var ErrSessionWindow = errors.New("session expiry must be after issue time")

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.IssuedAt.IsZero() {
		s.IssuedAt = time.Now().UTC()
	}
	if !s.ExpiresAt.After(s.IssuedAt) {
		return ErrSessionWindow
	}
	return nil
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}

// Badge 成就
type Badge struct {
	ID             uint64  `gorm:"primaryKey" json:"id"`
	Description    *string `gorm:"type:text" json:"description,omitempty"`
	ConditionType  string  `gorm:"size:100;not null" json:"condition_type"`
	ConditionValue int     `gorm:"not null" json:"condition_value"`
	ImageURL       *string `gorm:"size:500" json:"image_url,omitempty"`

	UserBadges []UserBadge `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

type UserBadge struct {
	ID       uint64    `gorm:"primaryKey" json:"id"`
	UserID   uint64    `gorm:"not null;index" json:"user_id"`
	BadgeID  uint64    `gorm:"not null;index" json:"badge_id"`
	EarnedAt time.Time `gorm:"not null;autoCreateTime" json:"earned_at"`
}

type Streak struct {
	ID            uint64     `gorm:"primaryKey" json:"id"`
	UserID        uint64     `gorm:"not null;uniqueIndex" json:"user_id"`
	CurrentStreak int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak int        `gorm:"not null;default:0" json:"longest_streak"`
	LastEntryDate *time.Time `gorm:"type:date" json:"last_entry_date,omitempty"`
}

// JournalEntry 日记
// ai_suggestion: {"counsel": "..."} as written by the analysis endpoint
// chat_log: reserved, never written
type JournalEntry struct {
	ID             uint64            `gorm:"primaryKey" json:"id"`
	UserID         uint64            `gorm:"not null;index" json:"user_id"`
	EntryDate      time.Time         `gorm:"type:date;not null;index" json:"entry_date"`
	Text           string            `gorm:"type:text" json:"text"`
	SentimentScore *int16            `gorm:"type:smallint" json:"sentiment_score,omitempty"`
	AISuggestion   datatypes.JSONMap `json:"ai_suggestion,omitempty"`
	ChatLog        datatypes.JSONMap `json:"chat_log,omitempty"`
	EntryStatus    EntryStatus       `gorm:"size:16" json:"entry_status"`
	WordCount      int               `gorm:"not null;default:0" json:"word_count"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	UserPrompts []UserPrompt `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

type AIResponse struct {
	ID           uint64  `gorm:"primaryKey" json:"id"`
	ResponseText *string `gorm:"type:text" json:"response_text,omitempty"`

	UserPrompts []UserPrompt `gorm:"foreignKey:AIResponseID;constraint:OnDelete:SET NULL;" json:"-"`
}

func (AIResponse) TableName() string {
	return "ai_responses"
}

type UserPrompt struct {
	ID             uint64     `gorm:"primaryKey" json:"id"`
	JournalEntryID uint64     `gorm:"not null;index" json:"journal_entry_id"`
	PromptID       uint64     `gorm:"not null;index" json:"prompt_id"`
	PromptText     *string    `gorm:"type:text" json:"prompt_text,omitempty"`
	AIResponseID   *uint64    `gorm:"column:ai_response_id" json:"ai_response_id,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&User{}, &Session{}, &Badge{}, &UserBadge{}, &Streak{},
		&JournalEntry{}, &AIResponse{}, &UserPrompt{},
	}
}
