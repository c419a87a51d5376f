package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/movie-listing/internal/model"
)

// ReplyRepo manages replies to top-level comments.
type ReplyRepo struct {
	db *sqlx.DB
}

func NewReplyRepo(db *sqlx.DB) *ReplyRepo { return &ReplyRepo{db: db} }

// Create inserts a reply under rp.ParentCommentID. The insert only happens
// when that parent exists; otherwise ErrCommentNotFound is returned and no
// row is written.
func (r *ReplyRepo) Create(ctx context.Context, rp *model.Reply) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO comment_replies (user_id, parent_comment_id, content)
		SELECT ?, parent_comment_id, ? FROM parent_comments WHERE parent_comment_id = ?`,
		rp.UserID, rp.Content, rp.ParentCommentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCommentNotFound
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rp.ID = uint64(id)
	return r.db.QueryRowxContext(ctx,
		"SELECT created_at FROM comment_replies WHERE reply_id = ?", rp.ID).Scan(&rp.CreatedAt)
}

// ListByParent returns the replies to parentID in insertion order. The
// slice is empty, not nil, when there are none.
func (r *ReplyRepo) ListByParent(ctx context.Context, parentID uint64) ([]model.Reply, error) {
	out := []model.Reply{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT reply_id, user_id, parent_comment_id, content, created_at
		FROM comment_replies WHERE parent_comment_id = ? ORDER BY reply_id`, parentID)
	if err != nil {
		return nil, err
	}
	return out, nil
}
