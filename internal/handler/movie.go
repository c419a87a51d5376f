package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-listing/internal/middleware"
	"github.com/iliyamo/movie-listing/internal/model"
	"github.com/iliyamo/movie-listing/internal/service"
)

// uploadTimeout covers reading both files and storing them.
const uploadTimeout = 60 * time.Second

// MovieHandler exposes movie listing, browsing and owner-only edits.
type MovieHandler struct {
	Movies *service.MovieService
}

func NewMovieHandler(m *service.MovieService) *MovieHandler {
	return &MovieHandler{Movies: m}
}

type movieResp struct {
	MovieID     uint64    `json:"movie_id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	Description string    `json:"description"`
	ReleaseDate string    `json:"release_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMovieResp(m model.MovieSummary) movieResp {
	return movieResp{
		MovieID:     m.ID,
		Title:       m.Title,
		Genre:       m.Genre,
		Description: m.Description,
		ReleaseDate: m.ReleaseDate,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// updateReq fields are optional; absent fields are left unchanged.
// updated_at accepts RFC 3339 or a plain YYYY-MM-DD date.
type updateReq struct {
	Title       *string `json:"title"`
	Genre       *string `json:"genre"`
	Description *string `json:"description"`
	UpdatedAt   *string `json:"updated_at"`
}

func parseUpdatedAt(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// readFormFile loads a multipart file part together with its declared
// content type.
func readFormFile(c echo.Context, field string) (service.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return service.File{}, badRequest(fmt.Sprintf("%s is required", field))
	}
	return readPart(fh)
}

func readPart(fh *multipart.FileHeader) (service.File, error) {
	f, err := fh.Open()
	if err != nil {
		return service.File{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return service.File{}, err
	}
	return service.File{ContentType: fh.Header.Get(echo.HeaderContentType), Data: data}, nil
}

// Upload: POST /list_a_movie (multipart, protected).
func (h *MovieHandler) Upload(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)

	video, err := readFormFile(c, "videofile")
	if err != nil {
		return err
	}
	cover, err := readFormFile(c, "coverfile")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), uploadTimeout)
	defer cancel()

	m, err := h.Movies.Upload(ctx, actor, service.UploadInput{
		Title:       c.FormValue("title"),
		Genre:       c.FormValue("genre"),
		Description: c.FormValue("description"),
		ReleaseDate: c.FormValue("release_date"),
		Video:       video,
		Cover:       cover,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toMovieResp(model.MovieSummary{
		ID:          m.ID,
		Title:       m.Title,
		Genre:       m.Genre,
		Description: m.Description,
		ReleaseDate: m.ReleaseDate,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}))
}

// List: GET /movies?offset=&limit= (public).
func (h *MovieHandler) List(c echo.Context) error {
	offset, limit := 0, service.DefaultPageSize
	if err := echo.QueryParamsBinder(c).
		Int("offset", &offset).
		Int("limit", &limit).
		BindError(); err != nil {
		return badRequest("offset and limit must be integers")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	movies, err := h.Movies.List(ctx, offset, limit)
	if err != nil {
		return err
	}
	out := make([]movieResp, 0, len(movies))
	for _, m := range movies {
		out = append(out, toMovieResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

// Get: GET /movie/:title (public).
func (h *MovieHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Movies.Get(ctx, pathParam(c, "title"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMovieResp(*m))
}

// Update: PUT /update_movie/:title (owner only).
func (h *MovieHandler) Update(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)
	var req updateReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	upd := model.MovieUpdate{Title: req.Title, Genre: req.Genre, Description: req.Description}
	if req.UpdatedAt != nil && *req.UpdatedAt != "" {
		at, err := parseUpdatedAt(*req.UpdatedAt)
		if err != nil {
			return badRequest("updated_at must be RFC 3339 or YYYY-MM-DD")
		}
		upd.UpdatedAt = &at
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Movies.Update(ctx, actor, pathParam(c, "title"), upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMovieResp(*m))
}

// Delete: DELETE /delete_movie/:title (owner only).
func (h *MovieHandler) Delete(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)
	title := pathParam(c, "title")

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Movies.Delete(ctx, actor, title); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"detail": fmt.Sprintf("Movie '%s' deleted successfully", title)})
}

// Video: GET /movie/:title/video streams the stored mp4 bytes.
func (h *MovieHandler) Video(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	data, err := h.Movies.Video(ctx, pathParam(c, "title"))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "video/mp4", data)
}

// Cover: GET /movie/:title/cover returns the stored cover image.
func (h *MovieHandler) Cover(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	data, ct, err := h.Movies.Cover(ctx, pathParam(c, "title"))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, ct, data)
}
