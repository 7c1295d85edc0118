package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"crisiscompass/internal/cluster"
	"crisiscompass/internal/corpus"
	"crisiscompass/internal/domain"
	"crisiscompass/internal/service"
)

// Server is the HTTP adapter over the RAG core and the posts dataset.
type Server struct {
	svc    *service.Service
	posts  []corpus.Post
	logger *log.Logger
}

func New(svc *service.Service, posts []corpus.Post, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}
	return &Server{svc: svc, posts: posts, logger: logger}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type summarizeRequest struct {
	Text string `json:"text"`
}

// Echo builds the configured echo instance with all routes registered.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]any{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", s.handleHealthz)
	e.GET("/state_counts", s.handleStateCounts)
	e.GET("/geolocation_clusters", s.handleGeolocationClusters)
	e.POST("/summarize", s.handleSummarize)
	e.POST("/chat", s.handleChat)
	return e
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Echo().Start(addr)
}

func (s *Server) handleHealthz(c echo.Context) error {
	if !s.svc.Ready() {
		return c.String(http.StatusServiceUnavailable, "building")
	}
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleStateCounts(c echo.Context) error {
	return c.JSON(http.StatusOK, cluster.StateCounts(s.posts))
}

func (s *Server) handleGeolocationClusters(c echo.Context) error {
	return c.JSON(http.StatusOK, cluster.Group(s.posts))
}

func (s *Server) handleSummarize(c echo.Context) error {
	var req summarizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	summary, err := s.svc.Summarize(c.Request().Context(), req.Text)
	if err != nil {
		return coreError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	if req.SessionID == "" {
		req.SessionID = "default_session"
	}
	answer, err := s.svc.Chat(c.Request().Context(), req.Message, req.SessionID)
	if err != nil {
		return coreError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"response": answer})
}

// coreError maps core error kinds to HTTP statuses. Upstream service
// failures are gateway errors, not internal ones.
func coreError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrNotReady):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrEmbedding),
		errors.Is(err, domain.ErrIndex),
		errors.Is(err, domain.ErrLanguageModel):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
