package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/streamcatalog/database"
	"github.com/princinho/streamcatalog/dto"
	"github.com/princinho/streamcatalog/logging"
	"github.com/princinho/streamcatalog/metrics"
	"github.com/princinho/streamcatalog/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// GET /movie-requests
// Admins see every request, other users only their own.
func GetMovieRequests(requests database.RequestStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}

		owner := p.UserID
		if p.IsAdmin() {
			owner = ""
		}

		items, err := requests.List(c.Request.Context(), owner)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
	}
}

// POST /movie-requests
// Body: { "title": "...", "imdbLink": "https://www.imdb.com/title/tt...", "comment": "..." }
func CreateMovieRequest(requests database.RequestStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}

		var body dto.CreateMovieRequestDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err.Error())
			return
		}
		body.Normalize()
		if err := body.Validate(); err != nil {
			badRequest(c, err.Error())
			return
		}

		now := time.Now().UTC()
		req := models.MovieRequest{
			ID:        bson.NewObjectID(),
			Title:     body.Title,
			ImdbLink:  body.ImdbLink,
			Comment:   body.Comment,
			UserID:    p.UserID,
			Username:  p.Username,
			Status:    models.MovieRequestStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}

		stored, err := requests.Insert(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		metrics.MovieRequestEvents.WithLabelValues("created").Inc()

		c.JSON(http.StatusCreated, stored)
	}
}

// POST /movie-requests/:id/approve
func ApproveMovieRequest(requests database.RequestStore) gin.HandlerFunc {
	return resolveMovieRequest(requests, models.MovieRequestStatusApproved)
}

// POST /movie-requests/:id/reject
// Body (optional): { "reason": "..." }
func RejectMovieRequest(requests database.RequestStore) gin.HandlerFunc {
	return resolveMovieRequest(requests, models.MovieRequestStatusRejected)
}

func resolveMovieRequest(requests database.RequestStore, status models.MovieRequestStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := principal(c)
		if !ok {
			return
		}

		res := database.Resolution{
			Status:     status,
			ResolvedBy: admin.Username,
			At:         time.Now().UTC(),
		}
		if status == models.MovieRequestStatusRejected {
			var body dto.RejectMovieRequestDTO
			// An empty body is a rejection without a reason.
			if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
				badRequest(c, err.Error())
				return
			}
			res.Reason = strings.TrimSpace(body.Reason)
			if res.Reason == "" {
				res.Reason = models.DefaultRejectionReason
			}
		}

		updated, err := requests.Resolve(c.Request.Context(), c.Param("id"), res)
		if err != nil {
			respondError(c, err)
			return
		}
		metrics.MovieRequestEvents.WithLabelValues(string(status)).Inc()
		logging.FromContext(c).WithField("request_id", updated.ID.Hex()).WithField("status", status).Info("movie request resolved")

		c.JSON(http.StatusOK, updated)
	}
}
