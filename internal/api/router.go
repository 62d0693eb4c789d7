package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), loggerMiddleware())

	jobs := r.Group("/jobs")
	jobs.GET("/search", h.SearchJobs)
	jobs.GET("/popular", h.PopularJobs)
	jobs.GET("/:id", h.JobDetails)

	favorites := r.Group("/favorites")
	favorites.GET("", h.ListFavorites)
	favorites.POST("", h.AddFavorite)
	favorites.GET("/:id", h.GetFavorite)
	favorites.DELETE("/:id", h.RemoveFavorite)
	favorites.POST("/:id/toggle", h.ToggleFavorite)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"query":   c.Request.URL.RawQuery,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		})
		if len(c.Errors) > 0 {
			entry.Warn(c.Errors.String())
		} else {
			entry.Debug("request processed")
		}
	}
}
