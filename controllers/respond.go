package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/streamcatalog/accounts"
	"github.com/princinho/streamcatalog/database"
	"github.com/princinho/streamcatalog/logging"
	"github.com/princinho/streamcatalog/middleware"
	"github.com/princinho/streamcatalog/models"
)

// respondError maps store and account errors onto the HTTP taxonomy.
// Uniqueness conflicts answer 400 like every other client input problem.
// Anything unrecognised is logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, database.ErrConflict):
		status = http.StatusBadRequest
	case errors.Is(err, accounts.ErrInvalidCredential):
		status = http.StatusUnauthorized
	case errors.Is(err, accounts.ErrBanned), errors.Is(err, accounts.ErrImmutableAccount):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logging.FromContext(c).WithError(err).Error("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// principal reads the caller set by AuthMiddleware, answering 401 if absent.
func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return models.Principal{}, false
	}
	return p, true
}
