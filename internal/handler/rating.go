package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-listing/internal/middleware"
	"github.com/iliyamo/movie-listing/internal/service"
)

// RatingHandler exposes rating a movie and reading its average.
type RatingHandler struct {
	Ratings *service.RatingService
}

func NewRatingHandler(r *service.RatingService) *RatingHandler {
	return &RatingHandler{Ratings: r}
}

type rateReq struct {
	MovieTitle string `json:"movie_title"`
	Rating     int    `json:"rating"`
}

type ratingResp struct {
	Title  string `json:"title"`
	Rating string `json:"rating"`
}

// Rate: POST /rating (protected).
func (h *RatingHandler) Rate(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)
	var req rateReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Ratings.Rate(ctx, actor, req.MovieTitle, req.Rating); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"detail": "Rating added successfully"})
}

// Average: GET /ratings/:title (public).
func (h *RatingHandler) Average(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	sum, err := h.Ratings.Average(ctx, pathParam(c, "title"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ratingResp{Title: sum.Title, Rating: sum.Rating})
}
