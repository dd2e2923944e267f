package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/lotty-marketplace/internal/model"
)

const offerColumns = "o.id, o.listing_id, o.buyer_id, o.amount, o.currency, o.message, o.status, o.created_at"

// OfferRepo provides data access to price offers.
type OfferRepo struct {
	db *sqlx.DB
}

func NewOfferRepo(db *sqlx.DB) *OfferRepo { return &OfferRepo{db: db} }

// Create inserts a pending offer and fills its ID, Status and CreatedAt.
func (r *OfferRepo) Create(ctx context.Context, o *model.Offer) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO offers (listing_id, buyer_id, amount, currency, message, status, created_at) VALUES (?,?,?,?,?,?,?)",
		o.ListingID, o.BuyerID, o.Amount, o.Currency, o.Message, model.OfferPending, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	o.Status = model.OfferPending
	o.CreatedAt = now
	return nil
}

// GetByID fetches an offer by id.
func (r *OfferRepo) GetByID(ctx context.Context, id uint64) (*model.Offer, error) {
	var o model.Offer
	err := r.db.GetContext(ctx, &o, "SELECT "+offerColumns+" FROM offers o WHERE o.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus changes the status of an offer that is still pending.  It
// returns false when the offer was no longer pending.
func (r *OfferRepo) UpdateStatus(ctx context.Context, id uint64, status string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE offers SET status = ? WHERE id = ? AND status = ?",
		status, id, model.OfferPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListForUser returns offers the user made plus offers received on the
// user's listings, newest first.
func (r *OfferRepo) ListForUser(ctx context.Context, userID uint64) ([]model.Offer, error) {
	out := []model.Offer{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+offerColumns+` FROM offers o
		 JOIN listings l ON l.id = o.listing_id
		 WHERE o.buyer_id = ? OR l.user_id = ?
		 ORDER BY o.created_at DESC, o.id DESC`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}
