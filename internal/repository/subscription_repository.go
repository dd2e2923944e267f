package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/lotty-marketplace/internal/model"
)

const subscriptionColumns = "id,user_id,plan_type,status,start_date,end_date,max_listings"

// SubscriptionRepo encapsulates queries over the subscriptions table.  The
// single-active invariant is kept here: Assign expires every active
// subscription of the user before inserting the new one, inside one
// transaction that holds the user's row lock.
type SubscriptionRepo struct {
	db *sqlx.DB
}

func NewSubscriptionRepo(db *sqlx.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// Latest returns the user's current subscription: the active one when there
// is one, otherwise the one with the latest end date.
func (r *SubscriptionRepo) Latest(ctx context.Context, userID uint64) (*model.Subscription, error) {
	var s model.Subscription
	err := r.db.GetContext(ctx, &s,
		"SELECT "+subscriptionColumns+" FROM subscriptions WHERE user_id = ? ORDER BY status = 'active' DESC, end_date DESC, id DESC LIMIT 1",
		userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Assign stores s as the user's only active subscription.  s.ID is filled
// on success.  ErrUserNotFound is returned when the user does not exist.
func (r *SubscriptionRepo) Assign(ctx context.Context, s *model.Subscription) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// serialise concurrent assignments for the same user
	var uid uint64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id = ? FOR UPDATE", s.UserID).Scan(&uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE subscriptions SET status = ? WHERE user_id = ? AND status = ?",
		model.SubscriptionExpired, s.UserID, model.SubscriptionActive); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO subscriptions (user_id, plan_type, status, start_date, end_date, max_listings) VALUES (?,?,?,?,?,?)",
		s.UserID, s.PlanType, model.SubscriptionActive, s.StartDate.UTC(), s.EndDate.UTC(), s.MaxListings)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	s.ID = uint64(id)
	s.Status = model.SubscriptionActive
	return nil
}

// ListLapsed returns every subscription still marked active whose end date
// is at or before now.  Assign keeps at most one active row per user, so
// this is at most one subscription per user.
func (r *SubscriptionRepo) ListLapsed(ctx context.Context, now time.Time) ([]model.Subscription, error) {
	const q = "SELECT " + subscriptionColumns + " FROM subscriptions WHERE status = ? AND end_date <= ? ORDER BY user_id, id"
	var out []model.Subscription
	if err := r.db.SelectContext(ctx, &out, q, model.SubscriptionActive, now.UTC()); err != nil {
		return nil, err
	}
	return out, nil
}

// Lapse marks the subscription expired and archives every listing of its
// owner in one transaction.  It reports whether the subscription was
// expired and how many listings were archived.  A subscription that is no
// longer active (another sweep or a new plan got there first) is left alone.
func (r *SubscriptionRepo) Lapse(ctx context.Context, subID, userID uint64, now time.Time) (bool, int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"UPDATE subscriptions SET status = ? WHERE id = ? AND status = ?",
		model.SubscriptionExpired, subID, model.SubscriptionActive)
	if err != nil {
		return false, 0, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, 0, err
	} else if n == 0 {
		return false, 0, nil
	}
	res, err = tx.ExecContext(ctx,
		"UPDATE listings SET status = ?, updated_at = ? WHERE user_id = ? AND status <> ?",
		model.ListingArchived, now.UTC(), userID, model.ListingArchived)
	if err != nil {
		return false, 0, err
	}
	archived, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}
	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	committed = true
	return true, archived, nil
}

// CountActive returns the number of subscriptions whose status is active.
func (r *SubscriptionRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM subscriptions WHERE status = ?", model.SubscriptionActive).Scan(&n)
	return n, err
}
