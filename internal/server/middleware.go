package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/Veraticus/life-sheet/internal/api"
	"github.com/Veraticus/life-sheet/internal/common"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("Request failed", attrs...)
			return
		}
		s.logger.Debug("Request", attrs...)
	}
}

// cors allows credentialed requests from the configured browser origin.
func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if s.opts.AllowedOrigin == "" || origin != s.opts.AllowedOrigin {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requireSession rejects requests without a valid session cookie.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(api.SessionCookie)
		if err != nil || token == "" {
			abortUnauthenticated(c)
			return
		}
		sess, err := s.parseToken(token)
		if err != nil {
			s.logger.Debug("Rejected session", "error", err)
			abortUnauthenticated(c)
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// ownerOnly hides other users' data behind a 404.
func (s *Server) ownerOnly(c *gin.Context) {
	if c.Param("userId") != session(c).UserID {
		c.AbortWithStatusJSON(http.StatusNotFound, api.ErrorResponse{Error: "Not found"})
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
}

func session(c *gin.Context) service.Session {
	v, _ := c.Get(sessionKey)
	sess, _ := v.(service.Session)
	return sess
}

// respondError maps store errors onto status codes. Unexpected errors are
// logged and hidden behind a generic message.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrDuplicateEntry):
		status = http.StatusConflict
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("Handler failed", "path", c.FullPath(), "error", err)
		msg = "Internal server error"
	}
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: msg})
}
