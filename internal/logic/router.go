package logic

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"journal-backend/internal/auth"
	"journal-backend/internal/db"
)

type Server struct {
	DB      *gorm.DB
	Entries *EntryService
	Tokens  *auth.TokenIssuer
	Logger  *zap.Logger
}

// SetupRouter 路由入口
func SetupRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.Logger))

	r.GET("/", RootHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/", withUnitOfWork(s.DB))
	api.POST("/auth/signup", s.SignupHandler)
	api.POST("/auth/login", s.LoginHandler)

	api.POST("/analyze-entry", countAnalysis, s.Authenticate, s.AnalyzeEntryHandler)
	api.POST("/auth/logout", s.Authenticate, s.LogoutHandler)

	return r
}

// RootHandler 健康检查
func RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "AI Journal API is running"})
}

type entryRequest struct {
	Text        string `json:"text"`
	EntryStatus string `json:"entry_status"`
}

// AnalyzeEntryHandler analyses an entry, saves it for the current user and
// returns the analysis.
func (s *Server) AnalyzeEntryHandler(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, newError(ErrBadRequest, err, "Invalid request body: %v", err))
		return
	}
	status, err := db.ParseEntryStatus(req.EntryStatus)
	if err != nil {
		s.fail(c, newError(ErrBadRequest, err, "%v", err))
		return
	}

	analysis, err := s.Entries.SubmitEntry(c.Request.Context(), unitOfWork(c), currentUser(c), req.Text, status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	abortWithError(c, err)
}
