package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Veraticus/life-sheet/internal/api"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "lifesheet"

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(user model.User) (string, time.Time, error) {
	now := s.opts.Now()
	expires := now.Add(s.opts.SessionTTL)
	claims := sessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, expires, nil
}

func (s *Server) parseToken(token string) (service.Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.opts.Secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.opts.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return service.Session{}, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return service.Session{}, errors.New("invalid token")
	}

	sess := service.Session{Token: token, UserID: claims.Subject, Username: claims.Username}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

func (s *Server) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(api.SessionCookie, token, maxAge, "/", "", s.opts.SecureCookie, true)
}

func (s *Server) startSession(c *gin.Context, status int, user *model.User, message string) {
	token, expires, err := s.issueToken(*user)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.setSessionCookie(c, token, int(s.opts.SessionTTL.Seconds()))
	c.JSON(status, api.AuthResponse{
		User:      api.NewUser(*user),
		ExpiresAt: expires,
		Message:   message,
	})
}

func (s *Server) handleRegister(c *gin.Context) {
	var reg service.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	user, err := s.store.CreateUser(c.Request.Context(), reg)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.logger.Info("Registered user", "user", user.Username)
	s.startSession(c, http.StatusCreated, user, "User registered successfully")
}

func (s *Server) handleLogin(c *gin.Context) {
	var creds api.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	user, err := s.store.Authenticate(c.Request.Context(), creds.Username, creds.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.startSession(c, http.StatusOK, user, "Login successful")
}

func (s *Server) handleLogout(c *gin.Context) {
	s.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.store.GetUser(c.Request.Context(), session(c).UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{api.KeyUser: api.NewUser(*user)})
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	var update service.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	user, err := s.store.UpdateUser(c.Request.Context(), session(c).UserID, update)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{api.KeyUser: api.NewUser(*user)})
}

func (s *Server) handleChangePassword(c *gin.Context) {
	var req api.PasswordChange
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if err := s.store.ChangePassword(c.Request.Context(), session(c).UserID, req.CurrentPassword, req.NewPassword); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
