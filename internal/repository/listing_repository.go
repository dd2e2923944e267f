package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/lotty-marketplace/internal/model"
)

const listingColumns = `id, user_id, title, description, currency, price, department, city, zone,
	lat, lng, google_maps_link, land_size, dimensions, owner_name, owner_type, title_status,
	phone, email, payment_condition, down_payment, barter_description, status, featured,
	rejection_reason, slug, created_at, updated_at`

// ListingRepo encapsulates all queries related to listings and their
// images.
type ListingRepo struct {
	db *sqlx.DB
}

func NewListingRepo(db *sqlx.DB) *ListingRepo { return &ListingRepo{db: db} }

// Create inserts l and fills its ID and timestamps.  Status is stored as
// given; the service layer decides it.  ErrSlugExists is returned when the
// slug is already taken.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	now := time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO listings (user_id, title, description, currency, price, department, city, zone,
		lat, lng, google_maps_link, land_size, dimensions, owner_name, owner_type, title_status,
		phone, email, payment_condition, down_payment, barter_description, status, featured,
		rejection_reason, slug, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		l.UserID, l.Title, l.Description, l.Currency, l.Price, l.Department, l.City, l.Zone,
		l.Lat, l.Lng, l.GoogleMapsLink, l.LandSize, l.Dimensions, l.OwnerName, l.OwnerType, l.TitleStatus,
		l.Phone, l.Email, l.PaymentCondition, l.DownPayment, l.BarterDescription, l.Status, l.Featured,
		l.RejectionReason, l.Slug, now, now)
	if isDuplicateKey(err) {
		return ErrSlugExists
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	l.CreatedAt, l.UpdatedAt = now, now
	if l.Images == nil {
		l.Images = []model.ListingImage{}
	}
	return nil
}

// GetByID fetches a listing row without images or owner.
func (r *ListingRepo) GetByID(ctx context.Context, id uint64) (*model.Listing, error) {
	var l model.Listing
	err := r.db.GetContext(ctx, &l, "SELECT "+listingColumns+" FROM listings WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetDetail fetches a listing together with its images and the owner's
// public profile.
func (r *ListingRepo) GetDetail(ctx context.Context, id uint64) (*model.Listing, error) {
	l, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	imgs, err := r.ImagesFor(ctx, []uint64{l.ID})
	if err != nil {
		return nil, err
	}
	l.Images = imgs[l.ID]
	if l.Images == nil {
		l.Images = []model.ListingImage{}
	}
	var owner model.PublicUser
	err = r.db.GetContext(ctx, &owner, "SELECT id, full_name, phone FROM users WHERE id = ?", l.UserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		l.User = &owner
	}
	return l, nil
}

// Update writes the owner-editable columns of l and refreshes UpdatedAt.
// Status, rejection reason and slug are left alone; they only change
// through SetModeration, Archive and the subscription sweep.
func (r *ListingRepo) Update(ctx context.Context, l *model.Listing) error {
	now := time.Now().UTC().Truncate(time.Second)
	const q = `UPDATE listings SET title=?, description=?, currency=?, price=?, department=?, city=?, zone=?,
		lat=?, lng=?, google_maps_link=?, land_size=?, dimensions=?, owner_name=?, owner_type=?, title_status=?,
		phone=?, email=?, payment_condition=?, down_payment=?, barter_description=?, featured=?, updated_at=?
		WHERE id=?`
	res, err := r.db.ExecContext(ctx, q,
		l.Title, l.Description, l.Currency, l.Price, l.Department, l.City, l.Zone,
		l.Lat, l.Lng, l.GoogleMapsLink, l.LandSize, l.Dimensions, l.OwnerName, l.OwnerType, l.TitleStatus,
		l.Phone, l.Email, l.PaymentCondition, l.DownPayment, l.BarterDescription, l.Featured, now, l.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports 0 for unchanged rows too, so confirm existence
		if _, err := r.GetByID(ctx, l.ID); err != nil {
			return err
		}
	}
	l.UpdatedAt = now
	return nil
}

// Archive moves a listing to archived.  Archiving an archived listing is a
// no-op.
func (r *ListingRepo) Archive(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE listings SET status = ?, updated_at = ? WHERE id = ? AND status <> ?",
		model.ListingArchived, time.Now().UTC(), id, model.ListingArchived)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SetModeration stores a moderation decision: the new status and the
// rejection reason (nil clears it).  Archived listings are never touched;
// ErrListingArchived is returned for them.
func (r *ListingRepo) SetModeration(ctx context.Context, id uint64, status string, reason *string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE listings SET status = ?, rejection_reason = ?, updated_at = ? WHERE id = ? AND status <> ?",
		status, reason, time.Now().UTC(), id, model.ListingArchived)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		l, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if l.Status == model.ListingArchived {
			return ErrListingArchived
		}
	}
	return nil
}

// AddImage attaches an image URL to a listing.
func (r *ListingRepo) AddImage(ctx context.Context, listingID uint64, url string, isTitle bool) (*model.ListingImage, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO listing_images (listing_id, url, is_title_document) VALUES (?,?,?)",
		listingID, url, isTitle)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.ListingImage{ID: uint64(id), ListingID: listingID, URL: url, IsTitleDocument: isTitle}, nil
}

// ImagesFor loads the images of several listings in one query, keyed by
// listing id.
func (r *ListingRepo) ImagesFor(ctx context.Context, listingIDs []uint64) (map[uint64][]model.ListingImage, error) {
	out := make(map[uint64][]model.ListingImage, len(listingIDs))
	if len(listingIDs) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(
		"SELECT id, listing_id, url, is_title_document FROM listing_images WHERE listing_id IN (?) ORDER BY id",
		listingIDs)
	if err != nil {
		return nil, err
	}
	var imgs []model.ListingImage
	if err := r.db.SelectContext(ctx, &imgs, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, img := range imgs {
		out[img.ListingID] = append(out[img.ListingID], img)
	}
	return out, nil
}

// Count returns the total number of listings.
func (r *ListingRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings").Scan(&n)
	return n, err
}

// CountByStatus returns the number of listings with the given status.
func (r *ListingRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings WHERE status = ?", status).Scan(&n)
	return n, err
}
