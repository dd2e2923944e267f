package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/lotty-marketplace/internal/model"
	"github.com/iliyamo/lotty-marketplace/internal/utils"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,password_hash,full_name,phone,role,created_at"

// NewUser carries the registration fields; Password is plain text and is
// hashed by Create.
type NewUser struct {
	Username string
	Password string
	FullName string
	Phone    string
	Role     string
}

// Create hashes the password, inserts the user and returns the stored row.
// Usernames are normalised to lower case; a duplicate yields ErrUsernameExists.
func (r *UserRepo) Create(ctx context.Context, in NewUser, cost int) (*model.User, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, full_name, phone, role, created_at) VALUES (?,?,?,?,?,?)",
		username, hash, in.FullName, in.Phone, in.Role, now)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.User{
		ID:           uint64(id),
		Username:     username,
		PasswordHash: hash,
		FullName:     in.FullName,
		Phone:        in.Phone,
		Role:         in.Role,
		CreatedAt:    now,
	}, nil
}

// GetByUsername fetches a user by normalised username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var u model.User
	err := r.DB.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Count returns the number of registered users.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

type userSubRow struct {
	model.User
	SubID          sql.NullInt64  `db:"sub_id"`
	SubPlanType    sql.NullString `db:"sub_plan_type"`
	SubStatus      sql.NullString `db:"sub_status"`
	SubStartDate   sql.NullTime   `db:"sub_start_date"`
	SubEndDate     sql.NullTime   `db:"sub_end_date"`
	SubMaxListings sql.NullInt64  `db:"sub_max_listings"`
}

// ListWithSubscriptions returns every user together with their current
// subscription, ranked the same way as SubscriptionRepo.Latest (nil when the
// user never had one).
func (r *UserRepo) ListWithSubscriptions(ctx context.Context) ([]model.UserWithSubscription, error) {
	const q = `SELECT u.id, u.username, u.password_hash, u.full_name, u.phone, u.role, u.created_at,
			s.id AS sub_id, s.plan_type AS sub_plan_type, s.status AS sub_status,
			s.start_date AS sub_start_date, s.end_date AS sub_end_date, s.max_listings AS sub_max_listings
		FROM users u
		LEFT JOIN subscriptions s ON s.id = (
			SELECT s2.id FROM subscriptions s2
			WHERE s2.user_id = u.id
			ORDER BY s2.status = 'active' DESC, s2.end_date DESC, s2.id DESC
			LIMIT 1)
		ORDER BY u.id`
	var rows []userSubRow
	if err := r.DB.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	out := make([]model.UserWithSubscription, 0, len(rows))
	for _, row := range rows {
		item := model.UserWithSubscription{User: row.User}
		if row.SubID.Valid {
			item.Subscription = &model.Subscription{
				ID:          uint64(row.SubID.Int64),
				UserID:      row.ID,
				PlanType:    row.SubPlanType.String,
				Status:      row.SubStatus.String,
				StartDate:   row.SubStartDate.Time,
				EndDate:     row.SubEndDate.Time,
				MaxListings: int(row.SubMaxListings.Int64),
			}
		}
		out = append(out, item)
	}
	return out, nil
}
