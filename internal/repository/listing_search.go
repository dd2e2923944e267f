package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/lotty-marketplace/internal/model"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 100
	maxSearchPage      = 10000
)

// buildListingWhere turns a filter into a WHERE condition and its args.
func buildListingWhere(f model.ListingFilter) (string, []any) {
	where := []string{}
	args := []any{}

	if f.Search != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		like := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, like, like)
	}
	eq := func(col, v string) {
		if v != "" {
			where = append(where, col+" = ?")
			args = append(args, v)
		}
	}
	eq("department", f.Department)
	eq("city", f.City)
	eq("zone", f.Zone)
	eq("currency", f.Currency)
	eq("owner_type", f.OwnerType)
	eq("title_status", f.TitleStatus)
	eq("payment_condition", f.PaymentCondition)
	eq("status", f.Status)
	if f.OwnerName != "" {
		where = append(where, "LOWER(owner_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.OwnerName)+"%")
	}
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	bound := func(cond string, v *float64) {
		if v != nil {
			where = append(where, cond)
			args = append(args, *v)
		}
	}
	bound("price >= ?", f.MinPrice)
	bound("price <= ?", f.MaxPrice)
	bound("land_size >= ?", f.MinSize)
	bound("land_size <= ?", f.MaxSize)
	bound("(SELECT AVG(rt.rating) FROM ratings rt WHERE rt.listing_id = l.id) >= ?", f.MinRating)

	if len(where) == 0 {
		return "1=1", args
	}
	return strings.Join(where, " AND "), args
}

func listingOrder(sortBy string) string {
	switch sortBy {
	case model.SortPriceAsc:
		return "price ASC, id DESC"
	case model.SortPriceDesc:
		return "price DESC, id DESC"
	case model.SortAZ:
		return "title ASC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

// Search returns the listings matching f, each with its images.  The
// caller is responsible for visibility rules; Search applies f.Status
// exactly as given.
func (r *ListingRepo) Search(ctx context.Context, f model.ListingFilter) ([]model.Listing, error) {
	limit := f.Limit
	if limit < 1 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	if page > maxSearchPage {
		page = maxSearchPage
	}
	cond, args := buildListingWhere(f)
	q := "SELECT " + listingColumns + " FROM listings l WHERE " + cond +
		" ORDER BY " + listingOrder(f.SortBy) + " LIMIT ? OFFSET ?"
	args = append(args, limit, (page-1)*limit)

	out := make([]model.Listing, 0, limit)
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	ids := make([]uint64, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	imgs, err := r.ImagesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Images = imgs[out[i].ID]
		if out[i].Images == nil {
			out[i].Images = []model.ListingImage{}
		}
	}
	return out, nil
}
