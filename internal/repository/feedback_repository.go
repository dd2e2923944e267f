package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/lotty-marketplace/internal/model"
)

// FeedbackRepo stores comments and ratings attached to listings.
type FeedbackRepo struct {
	db *sqlx.DB
}

func NewFeedbackRepo(db *sqlx.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

// AddComment inserts a comment.
func (r *FeedbackRepo) AddComment(ctx context.Context, c *model.Comment) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO comments (listing_id, user_id, content, created_at) VALUES (?,?,?,?)",
		c.ListingID, c.UserID, c.Content, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.CreatedAt = now
	return nil
}

// Comments lists a listing's comments oldest first, with author names.
func (r *FeedbackRepo) Comments(ctx context.Context, listingID uint64) ([]model.Comment, error) {
	out := []model.Comment{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT c.id, c.listing_id, c.user_id, u.full_name AS author, c.content, c.created_at
		 FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.listing_id = ? ORDER BY c.created_at ASC, c.id ASC`,
		listingID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddRating inserts a rating.
func (r *FeedbackRepo) AddRating(ctx context.Context, rt *model.Rating) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO ratings (listing_id, user_id, rating, created_at) VALUES (?,?,?,?)",
		rt.ListingID, rt.UserID, rt.Rating, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	rt.CreatedAt = now
	return nil
}
