// Package repository is the access layer over the MySQL schema.  Every
// joined view (listing with images, chat with participants and last
// message, user with subscription) is assembled here by explicit queries
// keyed by numeric ids.
//
// Lookups that find nothing return the per-entity ErrXNotFound sentinels
// below so that higher layers never have to inspect sql.ErrNoRows.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameExists       = errors.New("username already exists")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrListingNotFound      = errors.New("listing not found")
	ErrListingArchived      = errors.New("listing is archived")
	ErrSlugExists           = errors.New("listing slug already exists")
	ErrChatNotFound         = errors.New("chat not found")
	ErrOfferNotFound        = errors.New("offer not found")
)

// isDuplicateKey reports whether err is MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}
