package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/lotty-marketplace/internal/model"
)

var getListing = regexp.QuoteMeta("FROM listings WHERE id = ?")

func listingRow(id uint64, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "title", "status"}).AddRow(id, 1, "Lote", status)
}

func TestListingUpdateLeavesStatusAlone(t *testing.T) {
	var stmts []string
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherFunc(func(_, actual string) error {
		stmts = append(stmts, actual)
		return nil
	})))
	if err != nil {
		t.Fatal(err)
	}
	defer raw.Close()
	mock.ExpectExec("UPDATE listings").WillReturnResult(sqlmock.NewResult(0, 1))

	l := &model.Listing{ID: 4, Title: "Lote", Status: model.ListingActive}
	if err := NewListingRepo(sqlx.NewDb(raw, "mysql")).Update(context.Background(), l); err != nil {
		t.Fatal(err)
	}
	done(t, mock)
	if len(stmts) != 1 {
		t.Fatalf("statements: %q", stmts)
	}
	for _, col := range []string{"status", "rejection_reason", "slug"} {
		if strings.Contains(stmts[0], col+"=") {
			t.Fatalf("update writes %s: %s", col, stmts[0])
		}
	}
}

func TestListingArchive(t *testing.T) {
	ctx := context.Background()
	archive := regexp.QuoteMeta("UPDATE listings SET status = ?, updated_at = ? WHERE id = ? AND status <> ?")

	db, mock := newMock(t)
	mock.ExpectExec(archive).WithArgs("archived", sqlmock.AnyArg(), 4, "archived").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := NewListingRepo(db).Archive(ctx, 4); err != nil {
		t.Fatal(err)
	}
	done(t, mock)

	db, mock = newMock(t)
	mock.ExpectExec(archive).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(getListing).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if err := NewListingRepo(db).Archive(ctx, 4); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("err = %v", err)
	}
	done(t, mock)
}

func TestListingSetModerationSkipsArchived(t *testing.T) {
	ctx := context.Background()
	moderate := regexp.QuoteMeta("UPDATE listings SET status = ?, rejection_reason = ?, updated_at = ? WHERE id = ? AND status <> ?")

	db, mock := newMock(t)
	mock.ExpectExec(moderate).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(getListing).WithArgs(4).WillReturnRows(listingRow(4, model.ListingArchived))
	if err := NewListingRepo(db).SetModeration(ctx, 4, model.ListingActive, nil); !errors.Is(err, ErrListingArchived) {
		t.Fatalf("err = %v", err)
	}
	done(t, mock)

	// unchanged row: same decision stored twice
	db, mock = newMock(t)
	mock.ExpectExec(moderate).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(getListing).WillReturnRows(listingRow(4, model.ListingActive))
	if err := NewListingRepo(db).SetModeration(ctx, 4, model.ListingActive, nil); err != nil {
		t.Fatal(err)
	}
	done(t, mock)
}

func TestListingCreateTakenSlug(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO listings")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'lote-1a2b3c4d' for key 'uq_listings_slug'"})
	slug := "lote-1a2b3c4d"
	err := NewListingRepo(db).Create(context.Background(), &model.Listing{UserID: 1, Slug: &slug})
	if !errors.Is(err, ErrSlugExists) {
		t.Fatalf("err = %v", err)
	}
	done(t, mock)
}
