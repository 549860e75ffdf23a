package logic

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"journal-backend/internal/db"
)

const (
	userIDHeader = "X-User-Id"

	ctxCurrentUser    = "currentUser"
	ctxCurrentSession = "currentSession"
)

// Authenticate resolves the caller to a User. A bearer token is checked
// against its Session row; without one the X-User-Id header is trusted as is.
func (s *Server) Authenticate(c *gin.Context) {
	conn := unitOfWork(c)

	if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
		user, session, err := s.userFromToken(conn, token)
		if err != nil {
			_ = c.Error(err)
			abortWithError(c, err)
			return
		}
		c.Set(ctxCurrentUser, user)
		c.Set(ctxCurrentSession, session)
		c.Next()
		return
	}

	user, err := userFromHeader(conn, c.GetHeader(userIDHeader))
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, err)
		return
	}
	c.Set(ctxCurrentUser, user)
	c.Next()
}

// bearerToken splits an Authorization header; the scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	const scheme = "Bearer "
	if len(header) < len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}
	return strings.TrimSpace(header[len(scheme):]), true
}

func userFromHeader(conn *gorm.DB, raw string) (*db.User, error) {
	if raw == "" {
		return nil, newError(ErrUnauthenticated, nil, "User ID must be provided in the '%s' header.", userIDHeader)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, newError(ErrBadRequest, err, "'%s' must be an integer.", userIDHeader)
	}
	return findUser(conn, id)
}

func (s *Server) userFromToken(conn *gorm.DB, token string) (*db.User, *db.Session, error) {
	userID, err := s.Tokens.Verify(token)
	if err != nil {
		return nil, nil, newError(ErrUnauthenticated, err, "Invalid session token.")
	}

	var session db.Session
	err = conn.Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, newError(ErrUnauthenticated, err, "Unknown session.")
	}
	if err != nil {
		return nil, nil, newError(ErrPersistence, err, "Failed to look up session: %v", err)
	}
	if session.UserID != userID || !session.Active(time.Now()) {
		return nil, nil, newError(ErrUnauthenticated, nil, "Session has been revoked or has expired.")
	}

	user, err := findUser(conn, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, &session, nil
}

func findUser(conn *gorm.DB, id uint64) (*db.User, error) {
	var user db.User
	err := conn.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, err, "User with ID %d not found.", id)
	}
	if err != nil {
		return nil, newError(ErrPersistence, err, "Failed to look up user: %v", err)
	}
	return &user, nil
}

func currentUser(c *gin.Context) *db.User {
	return c.MustGet(ctxCurrentUser).(*db.User)
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (cr *credentials) normalize() {
	cr.Email = strings.TrimSpace(strings.ToLower(cr.Email))
	cr.Name = strings.TrimSpace(cr.Name)
}

// SignupHandler 注册
func (s *Server) SignupHandler(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, newError(ErrBadRequest, err, "Invalid request body: %v", err))
		return
	}
	req.normalize()
	if req.Name == "" || req.Email == "" || req.Password == "" {
		abortWithError(c, newError(ErrBadRequest, nil, "name, email and password are required."))
		return
	}
	conn := unitOfWork(c)

	var taken int64
	if err := conn.Model(&db.User{}).Where("email = ?", req.Email).Count(&taken).Error; err != nil {
		abortWithError(c, newError(ErrPersistence, err, "Failed to check email: %v", err))
		return
	}
	if taken > 0 {
		abortWithError(c, newError(ErrConflict, nil, "Email %s is already registered.", req.Email))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		abortWithError(c, newError(ErrBadRequest, err, "Could not hash password: %v", err))
		return
	}
	user := db.User{Name: req.Name, Email: req.Email, PasswordHash: string(hashed), Role: db.RoleUser}
	if err := conn.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			abortWithError(c, newError(ErrConflict, err, "Email %s is already registered.", req.Email))
			return
		}
		abortWithError(c, newError(ErrPersistence, err, "Failed to create user: %v", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user_id": user.ID})
}

// LoginHandler 登录，签发会话令牌
func (s *Server) LoginHandler(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, newError(ErrBadRequest, err, "Invalid request body: %v", err))
		return
	}
	req.normalize()
	if req.Email == "" || req.Password == "" {
		abortWithError(c, newError(ErrBadRequest, nil, "email and password are required."))
		return
	}
	conn := unitOfWork(c)

	var user db.User
	err := conn.Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		abortWithError(c, newError(ErrUnauthenticated, nil, "Invalid credentials."))
		return
	}
	if err != nil {
		abortWithError(c, newError(ErrPersistence, err, "Failed to look up user: %v", err))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		abortWithError(c, newError(ErrUnauthenticated, nil, "Invalid credentials."))
		return
	}

	now := time.Now().UTC()
	token, expiresAt, err := s.Tokens.Issue(user.ID, now)
	if err != nil {
		abortWithError(c, newError(ErrPersistence, err, "Could not issue token: %v", err))
		return
	}
	session := db.Session{
		UserID:    user.ID,
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}
	if ua := c.Request.UserAgent(); ua != "" {
		session.DeviceInfo = &ua
	}
	if ip := c.ClientIP(); ip != "" {
		session.IPAddress = &ip
	}
	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("last_login", now).Error
	})
	if err != nil {
		abortWithError(c, newError(ErrPersistence, err, "Failed to create session: %v", err))
		return
	}

	s.Logger.Info("session issued", zap.Uint64("user_id", user.ID), zap.Uint64("session_id", session.ID))
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": expiresAt})
}

// LogoutHandler revokes the bearer session used for this request.
func (s *Server) LogoutHandler(c *gin.Context) {
	v, ok := c.Get(ctxCurrentSession)
	if !ok {
		abortWithError(c, newError(ErrBadRequest, nil, "Logout requires a bearer session token."))
		return
	}
	session := v.(*db.Session)
	if err := unitOfWork(c).Model(session).Update("revoked", true).Error; err != nil {
		abortWithError(c, newError(ErrPersistence, err, "Failed to revoke session: %v", err))
		return
	}
	c.Status(http.StatusNoContent)
}
