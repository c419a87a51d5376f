package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-listing/internal/handler"
)

// RegisterCommunity registers ratings, comments and replies. Reads are
// public; posting requires a valid token.
func RegisterCommunity(e *echo.Echo, r *handler.RatingHandler, c *handler.CommentHandler, auth echo.MiddlewareFunc) {
	e.POST("/rating", r.Rate, auth)
	e.GET("/ratings/:title", r.Average)

	e.POST("/comment/:title", c.Comment, auth)
	e.GET("/comments/:title", c.List)

	e.POST("/reply", c.Reply, auth)
	e.GET("/replies/:parent_comment_id", c.Replies)
}
