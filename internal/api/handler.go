package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxaizer/job-finder/internal/clients/jsearch"
	"github.com/maxaizer/job-finder/internal/entities"
	"github.com/maxaizer/job-finder/internal/services"
)

type JobSearcher interface {
	GetJobs(ctx context.Context, params jsearch.SearchParameters) (*jsearch.SearchResponse, error)
	FetchJobDetails(ctx context.Context, jobID string) (*jsearch.JobDetailsResponse, error)
}

type FavoritesService interface {
	Add(ctx context.Context, job entities.FavoriteJob) error
	Remove(ctx context.Context, jobID string) error
	Get(ctx context.Context, jobID string) (*entities.FavoriteJob, error)
	List(ctx context.Context) ([]entities.FavoriteJob, error)
	Toggle(ctx context.Context, job entities.FavoriteJob) (bool, error)
}

type PopularSource interface {
	Get(ctx context.Context) ([]jsearch.Job, error)
}

type Handler struct {
	jobs         JobSearcher
	favorites    FavoritesService
	popular      PopularSource
	localeSuffix string
}

// NewHandler creates the REST handler. popular may be nil when no popular queries are configured.
func NewHandler(jobs JobSearcher, favorites FavoritesService, popular PopularSource, localeSuffix string) *Handler {
	return &Handler{jobs: jobs, favorites: favorites, popular: popular, localeSuffix: localeSuffix}
}

type searchResult struct {
	Page     int           `json:"page"`
	NextPage int           `json:"next_page"`
	Jobs     []jsearch.Job `json:"jobs"`
}

type toggleResult struct {
	JobID      string `json:"job_id"`
	IsFavorite bool   `json:"is_favorite"`
}

func (h *Handler) SearchJobs(c *gin.Context) {
	jobType, err := services.ParseJobType(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := services.BuildSearch(c.Query("query"), jobType, h.localeSuffix)
	if params.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'query' is required"})
		return
	}
	params.Page = c.Query("page")

	page, err := params.CurrentPage()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.jobs.GetJobs(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	jobs := []jsearch.Job{}
	if resp != nil && resp.Data != nil {
		jobs = resp.Data
	}
	c.JSON(http.StatusOK, searchResult{Page: page, NextPage: page + 1, Jobs: jobs})
}

func (h *Handler) PopularJobs(c *gin.Context) {
	if h.popular == nil {
		c.JSON(http.StatusOK, []jsearch.Job{})
		return
	}

	jobs, err := h.popular.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if jobs == nil {
		jobs = []jsearch.Job{}
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) JobDetails(c *gin.Context) {
	details, ok := h.fetchDetails(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) ListFavorites(c *gin.Context) {
	favorites, err := h.favorites.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, favorites)
}

func (h *Handler) GetFavorite(c *gin.Context) {
	favorite, err := h.favorites.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if favorite == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job is not in favorites"})
		return
	}
	c.JSON(http.StatusOK, favorite)
}

func (h *Handler) AddFavorite(c *gin.Context) {
	var job entities.FavoriteJob
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.favorites.Add(c.Request.Context(), job); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	if err := h.favorites.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleFavorite looks the job up through the API so the stored subset is always taken from
// the listing itself.
func (h *Handler) ToggleFavorite(c *gin.Context) {
	details, ok := h.fetchDetails(c)
	if !ok {
		return
	}

	isFavorite, err := h.favorites.Toggle(c.Request.Context(), services.FavoriteFromJob(details.Job))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toggleResult{JobID: details.JobID, IsFavorite: isFavorite})
}

func (h *Handler) fetchDetails(c *gin.Context) (*jsearch.JobDetails, bool) {
	id := c.Param("id")

	resp, err := h.jobs.FetchJobDetails(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	details, found := resp.Job()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "job " + strconv.Quote(id) + " not found"})
		return nil, false
	}
	return details, true
}
