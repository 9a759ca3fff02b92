package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/streamcatalog/accounts"
	"github.com/princinho/streamcatalog/dto"
	"github.com/princinho/streamcatalog/logging"
	"github.com/princinho/streamcatalog/metrics"
	"github.com/princinho/streamcatalog/utils"
)

// POST /signup
func Signup(accts *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.SignupDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err.Error())
			return
		}

		username := strings.TrimSpace(body.Username)
		email := strings.ToLower(strings.TrimSpace(body.Email))
		if username == "" {
			badRequest(c, "username is required")
			return
		}

		user, err := accts.CreateUser(c.Request.Context(), username, email, body.Password)
		if err != nil {
			metrics.AuthEvents.WithLabelValues("signup", "failure").Inc()
			respondError(c, err)
			return
		}
		metrics.AuthEvents.WithLabelValues("signup", "success").Inc()
		logging.FromContext(c).WithField("user_id", user.ID.Hex()).Info("user signed up")

		c.JSON(http.StatusCreated, gin.H{
			"message": "account created",
			"id":      user.ID,
		})
	}
}

// POST /login
func Login(accts *accounts.Service, tokens *utils.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err.Error())
			return
		}

		p, err := accts.Authenticate(c.Request.Context(), strings.TrimSpace(body.Username), body.Password)
		if err != nil {
			metrics.AuthEvents.WithLabelValues("login", "failure").Inc()
			if errors.Is(err, accounts.ErrBanned) {
				logging.FromContext(c).WithField("username", body.Username).Warn("banned user attempted login")
			}
			respondError(c, err)
			return
		}

		accessToken, refreshToken, err := tokens.IssuePair(p)
		if err != nil {
			respondError(c, err)
			return
		}
		metrics.AuthEvents.WithLabelValues("login", "success").Inc()

		c.JSON(http.StatusOK, gin.H{
			"token":        accessToken,
			"refreshToken": refreshToken,
			"role":         p.Role,
		})
	}
}

// POST /refresh-token
func RefreshToken(tokens *utils.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RefreshTokenDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token"})
			return
		}

		accessToken, err := tokens.Refresh(body.RefreshToken)
		if err != nil {
			metrics.AuthEvents.WithLabelValues("refresh", "failure").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		metrics.AuthEvents.WithLabelValues("refresh", "success").Inc()

		c.JSON(http.StatusOK, gin.H{"token": accessToken})
	}
}

// GET /check-auth
func CheckAuth(accts *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		user, err := accts.Profile(c.Request.Context(), p.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// POST /update-profile
// The username is part of the token claims, so a fresh access token is returned.
func UpdateProfile(accts *accounts.Service, tokens *utils.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}

		var body dto.UpdateProfileDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err.Error())
			return
		}
		if strings.TrimSpace(body.Username) == "" {
			badRequest(c, "username is required")
			return
		}

		user, err := accts.Rename(c.Request.Context(), p.UserID, body.Username)
		if err != nil {
			respondError(c, err)
			return
		}

		token, err := tokens.Issue(user.Principal(), tokens.AccessTTL())
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "profile updated",
			"user":    user,
			"token":   token,
		})
	}
}

// POST /change-password
func ChangePassword(accts *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}

		var body dto.ChangePasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err.Error())
			return
		}
		if body.CurrentPassword == body.NewPassword {
			badRequest(c, "new password must differ from the current one")
			return
		}

		if err := accts.ChangePassword(c.Request.Context(), p.UserID, body.CurrentPassword, body.NewPassword); err != nil {
			respondError(c, err)
			return
		}
		logging.FromContext(c).WithField("user_id", p.UserID).Info("password changed")

		c.JSON(http.StatusOK, gin.H{"message": "password updated"})
	}
}
