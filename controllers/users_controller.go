package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/streamcatalog/accounts"
	"github.com/princinho/streamcatalog/database"
	"github.com/princinho/streamcatalog/dto"
	"github.com/princinho/streamcatalog/logging"
)

// GET /admin/users
func ListUsers(accts *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := accts.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": users, "total": len(users)})
	}
}

// POST /admin/users/:id/ban
// Body: { "ban": true }
func BanUser(accts *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := principal(c)
		if !ok {
			return
		}

		var body dto.BanUserDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "ban must be a boolean")
			return
		}

		id := c.Param("id")
		if err := accts.SetBanned(c.Request.Context(), id, *body.Ban, admin.UserID); err != nil {
			respondError(c, err)
			return
		}
		logging.FromContext(c).WithField("target_user", id).WithField("banned", *body.Ban).Info("ban flag updated")

		msg := "user unbanned"
		if *body.Ban {
			msg = "user banned"
		}
		c.JSON(http.StatusOK, gin.H{"message": msg, "isBanned": *body.Ban})
	}
}

// DELETE /admin/users/:id
func DeleteUser(accts *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := accts.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		logging.FromContext(c).WithField("target_user", id).Info("user deleted")
		c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
	}
}

// GET /admin/stats
func GetStats(accts *accounts.Service, movies database.MovieStore, requests database.RequestStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userCounts, err := accts.Counts(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		movieCounts, err := movies.Counts(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		requestCounts, err := requests.Counts(ctx)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"users":       userCounts.Total,
			"bannedUsers": userCounts.Banned,
			"movies":      movieCounts.Total,
			"films":       movieCounts.Films,
			"series":      movieCounts.Series,
			"requests":    requestCounts,
		})
	}
}
