package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/streamcatalog/database"
	"github.com/princinho/streamcatalog/dto"
	"github.com/princinho/streamcatalog/logging"
	"github.com/princinho/streamcatalog/models"
	"github.com/princinho/streamcatalog/utils"
)

// GET /movies?genre=Action&type=film&search=...&page=1&limit=20
func GetMovies(movies database.MovieStore, limits utils.PageLimits) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := limits.Clamp(c.Query("page"), c.Query("limit"))

		filter := database.MovieFilter{
			Genre:  strings.TrimSpace(c.Query("genre")),
			Type:   strings.TrimSpace(c.Query("type")),
			Search: strings.TrimSpace(c.Query("search")),
			Page:   page,
			Limit:  limit,
		}

		items, total, err := movies.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]models.Movie, 0, len(items))
		for _, m := range items {
			out = append(out, utils.EmbeddableMovie(m))
		}

		c.JSON(http.StatusOK, gin.H{
			"items": out,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// GET /movies/:id
func GetMovie(movies database.MovieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := movies.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, utils.EmbeddableMovie(m))
	}
}

// POST /movies
func AddMovie(movies database.MovieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := principal(c)
		if !ok {
			return
		}

		var body dto.CreateMovieDTO
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
		movie := body.Movie()
		movie.Slug = utils.GenerateSlug(movie.Title)
		movie.CreatedBy = admin.UserID
		movie.CreatedAt = now
		movie.UpdatedAt = now

		stored, err := movies.Insert(c.Request.Context(), movie)
		if err != nil {
			respondError(c, err)
			return
		}
		logging.FromContext(c).WithField("movie_id", stored.ID.Hex()).Info("movie created")

		c.JSON(http.StatusCreated, stored)
	}
}

// DELETE /movies/:id
func DeleteMovie(movies database.MovieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := movies.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		logging.FromContext(c).WithField("movie_id", id).Info("movie deleted")
		c.JSON(http.StatusOK, gin.H{"message": "movie deleted"})
	}
}
