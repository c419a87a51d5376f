package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-listing/internal/middleware"
	"github.com/iliyamo/movie-listing/internal/service"
)

// CommentHandler exposes comments and replies.
type CommentHandler struct {
	Comments *service.CommentService
}

func NewCommentHandler(s *service.CommentService) *CommentHandler {
	return &CommentHandler{Comments: s}
}

type contentReq struct {
	Content string `json:"content"`
}

type commentResp struct {
	CommentID  uint64 `json:"comment_id"`
	Username   string `json:"username"`
	MovieTitle string `json:"movie_title"`
	Content    string `json:"content"`
}

type commentItem struct {
	MovieTitle string `json:"movie_title"`
	Username   string `json:"username"`
	Comment    string `json:"comment"`
}

type replyResp struct {
	Username string `json:"username"`
	Comment  string `json:"comment"`
	Reply    string `json:"reply"`
}

type replyItem struct {
	Reply string `json:"reply"`
}

// parseCommentID reads a positive comment id.
func parseCommentID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("parent_comment_id must be a positive integer")
	}
	return id, nil
}

// Comment: POST /comment/:title (protected).
func (h *CommentHandler) Comment(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)
	var req contentReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	posted, err := h.Comments.Comment(ctx, actor, pathParam(c, "title"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, commentResp{
		CommentID:  posted.CommentID,
		Username:   posted.Username,
		MovieTitle: posted.MovieTitle,
		Content:    posted.Content,
	})
}

// List: GET /comments/:title (public).
func (h *CommentHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	views, err := h.Comments.Comments(ctx, pathParam(c, "title"))
	if err != nil {
		return err
	}
	out := make([]commentItem, 0, len(views))
	for _, v := range views {
		out = append(out, commentItem{MovieTitle: v.MovieTitle, Username: v.Username, Comment: v.Content})
	}
	return c.JSON(http.StatusOK, out)
}

// Reply: POST /reply?parent_comment_id= (protected).
func (h *CommentHandler) Reply(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)
	parentID, err := parseCommentID(c.QueryParam("parent_comment_id"))
	if err != nil {
		return err
	}
	var req contentReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	posted, err := h.Comments.Reply(ctx, actor, parentID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, replyResp{Username: posted.Username, Comment: posted.Comment, Reply: posted.Reply})
}

// Replies: GET /replies/:parent_comment_id (public).
func (h *CommentHandler) Replies(c echo.Context) error {
	parentID, err := parseCommentID(c.Param("parent_comment_id"))
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	replies, err := h.Comments.Replies(ctx, parentID)
	if err != nil {
		return err
	}
	out := make([]replyItem, 0, len(replies))
	for _, r := range replies {
		out = append(out, replyItem{Reply: r.Content})
	}
	return c.JSON(http.StatusOK, out)
}
