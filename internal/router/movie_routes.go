package router // router defines how HTTP routes are registered for the API

import (
	"fmt"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/movie-listing/internal/handler"
)

// RegisterMovies registers the movie endpoints. Browsing is public;
// listing, updating and deleting require a valid token, and the upload
// body is capped at maxUploadMB.
func RegisterMovies(e *echo.Echo, m *handler.MovieHandler, auth echo.MiddlewareFunc, maxUploadMB int) {
	if maxUploadMB <= 0 {
		maxUploadMB = 64
	}
	// Auth runs before the body limit so anonymous uploads are refused
	// without reading the payload.
	e.POST("/list_a_movie", m.Upload, auth, echomw.BodyLimit(fmt.Sprintf("%dM", maxUploadMB)))

	e.GET("/movies", m.List)
	e.GET("/movie/:title", m.Get)
	e.GET("/movie/:title/video", m.Video)
	e.GET("/movie/:title/cover", m.Cover)

	// Ownership is checked by the service, not by middleware.
	e.PUT("/update_movie/:title", m.Update, auth)
	e.DELETE("/delete_movie/:title", m.Delete, auth)
}
