package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/lotty-marketplace/internal/model"
)

const chatColumns = "id, listing_id, buyer_id, seller_id, created_at, updated_at"

// ChatRepo provides data access to chats and their messages.
type ChatRepo struct {
	db *sqlx.DB
}

func NewChatRepo(db *sqlx.DB) *ChatRepo { return &ChatRepo{db: db} }

// Find returns the chat for the (listing, buyer, seller) triple.
func (r *ChatRepo) Find(ctx context.Context, listingID, buyerID, sellerID uint64) (*model.Chat, error) {
	var c model.Chat
	err := r.db.GetContext(ctx, &c,
		"SELECT "+chatColumns+" FROM chats WHERE listing_id = ? AND buyer_id = ? AND seller_id = ? LIMIT 1",
		listingID, buyerID, sellerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreate returns the existing chat for the triple or inserts a new
// one.  created reports whether a row was inserted.  Two concurrent callers
// racing on the unique index both end up with the same row.
func (r *ChatRepo) FindOrCreate(ctx context.Context, listingID, buyerID, sellerID uint64) (*model.Chat, bool, error) {
	c, err := r.Find(ctx, listingID, buyerID, sellerID)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, ErrChatNotFound) {
		return nil, false, err
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO chats (listing_id, buyer_id, seller_id, created_at, updated_at) VALUES (?,?,?,?,?)",
		listingID, buyerID, sellerID, now, now)
	if err != nil {
		if isDuplicateKey(err) {
			c, err := r.Find(ctx, listingID, buyerID, sellerID)
			return c, false, err
		}
		return nil, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, err
	}
	return &model.Chat{
		ID:        uint64(id),
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		CreatedAt: now,
		UpdatedAt: now,
	}, true, nil
}

// GetByID fetches a chat by id.
func (r *ChatRepo) GetByID(ctx context.Context, id uint64) (*model.Chat, error) {
	var c model.Chat
	err := r.db.GetContext(ctx, &c, "SELECT "+chatColumns+" FROM chats WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type chatSummaryRow struct {
	model.Chat
	ListingTitle    string         `db:"listing_title"`
	ListingStatus   string         `db:"listing_status"`
	ListingCurrency string         `db:"listing_currency"`
	ListingPrice    float64        `db:"listing_price"`
	OtherID         uint64         `db:"other_id"`
	OtherName       string         `db:"other_name"`
	OtherPhone      string         `db:"other_phone"`
	LastID          sql.NullInt64  `db:"last_id"`
	LastSender      sql.NullInt64  `db:"last_sender"`
	LastContent     sql.NullString `db:"last_content"`
	LastRead        sql.NullBool   `db:"last_read"`
	LastCreated     sql.NullTime   `db:"last_created"`
	Unread          int            `db:"unread"`
}

// ListForUser returns every chat the user takes part in, with the listing
// summary, the other participant, the last message and the number of
// unread messages sent by the other side.  Most recent activity first.
func (r *ChatRepo) ListForUser(ctx context.Context, userID uint64) ([]model.ChatSummary, error) {
	const q = `SELECT c.id, c.listing_id, c.buyer_id, c.seller_id, c.created_at, c.updated_at,
			l.title AS listing_title, l.status AS listing_status, l.currency AS listing_currency, l.price AS listing_price,
			o.id AS other_id, o.full_name AS other_name, o.phone AS other_phone,
			m.id AS last_id, m.sender_id AS last_sender, m.content AS last_content, m.is_read AS last_read, m.created_at AS last_created,
			(SELECT COUNT(*) FROM messages u
				WHERE u.chat_id = c.id AND u.sender_id <> ? AND u.is_read = 0) AS unread
		FROM chats c
		JOIN listings l ON l.id = c.listing_id
		JOIN users o ON o.id = IF(c.buyer_id = ?, c.seller_id, c.buyer_id)
		LEFT JOIN messages m ON m.id = (
			SELECT m2.id FROM messages m2 WHERE m2.chat_id = c.id
			ORDER BY m2.created_at DESC, m2.id DESC LIMIT 1)
		WHERE c.buyer_id = ? OR c.seller_id = ?
		ORDER BY c.updated_at DESC, c.id DESC`
	var rows []chatSummaryRow
	if err := r.db.SelectContext(ctx, &rows, q, userID, userID, userID, userID); err != nil {
		return nil, err
	}
	out := make([]model.ChatSummary, 0, len(rows))
	for _, row := range rows {
		s := model.ChatSummary{
			Chat: row.Chat,
			Listing: model.ChatListingSummary{
				ID:       row.ListingID,
				Title:    row.ListingTitle,
				Status:   row.ListingStatus,
				Currency: row.ListingCurrency,
				Price:    row.ListingPrice,
			},
			OtherUser:   model.PublicUser{ID: row.OtherID, FullName: row.OtherName, Phone: row.OtherPhone},
			UnreadCount: row.Unread,
		}
		if row.LastID.Valid {
			s.LastMessage = &model.Message{
				ID:        uint64(row.LastID.Int64),
				ChatID:    row.ID,
				SenderID:  uint64(row.LastSender.Int64),
				Content:   row.LastContent.String,
				Read:      row.LastRead.Bool,
				CreatedAt: row.LastCreated.Time,
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// Messages returns the chat's messages in creation order.  When afterID is
// non-zero only messages with a larger id are returned, which is what
// polling clients ask for.
func (r *ChatRepo) Messages(ctx context.Context, chatID, afterID uint64) ([]model.Message, error) {
	out := []model.Message{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, chat_id, sender_id, content, is_read, created_at FROM messages
		 WHERE chat_id = ? AND id > ? ORDER BY created_at ASC, id ASC`,
		chatID, afterID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddMessage inserts a message and bumps the chat's updated_at so the chat
// list orders by recent activity.
func (r *ChatRepo) AddMessage(ctx context.Context, chatID, senderID uint64, content string) (*model.Message, error) {
	now := time.Now().UTC().Truncate(time.Second)
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO messages (chat_id, sender_id, content, is_read, created_at) VALUES (?,?,?,0,?)",
		chatID, senderID, content, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE chats SET updated_at = ? WHERE id = ?", now, chatID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &model.Message{ID: uint64(id), ChatID: chatID, SenderID: senderID, Content: content, CreatedAt: now}, nil
}

// MarkRead flags every message of the chat not sent by readerID as read.
func (r *ChatRepo) MarkRead(ctx context.Context, chatID, readerID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE messages SET is_read = 1 WHERE chat_id = ? AND sender_id <> ? AND is_read = 0",
		chatID, readerID)
	return err
}
