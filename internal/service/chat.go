package service

import (
    "context"
    "errors"
    "strings"
    "unicode/utf8"

    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/queue"
    "github.com/iliyamo/lotty-marketplace/internal/repository"
)

// MaxMessageLen is the longest chat message accepted, in characters.
const MaxMessageLen = 2000

// MessageNotifier is told about every stored message so that connected
// clients can be pushed the update.  The websocket hub implements it.
type MessageNotifier interface {
    NotifyMessage(msg *model.Message)
}

// ChatService manages buyer/seller conversations about a listing.
type ChatService struct {
    chats    ChatStore
    listings ListingStore
    events   Publisher
    notify   MessageNotifier
}

func NewChatService(chats ChatStore, listings ListingStore, events Publisher, notify MessageNotifier) *ChatService {
    if chats == nil || listings == nil {
        panic("nil dependency")
    }
    return &ChatService{chats: chats, listings: listings, events: events, notify: notify}
}

// CreateChat opens (or returns the existing) conversation between buyer and
// the owner of the listing.  Calling it again for the same listing and
// buyer returns the same chat.  created reports whether a new chat was
// stored.
func (s *ChatService) CreateChat(ctx context.Context, buyer *model.User, listingID uint64) (*model.Chat, bool, error) {
    if buyer == nil {
        return nil, false, ErrUnauthorized
    }
    if listingID == 0 {
        return nil, false, invalid("listingId", "listingId is required")
    }
    l, err := s.listings.GetByID(ctx, listingID)
    if errors.Is(err, repository.ErrListingNotFound) {
        return nil, false, ErrNotFound
    }
    if err != nil {
        return nil, false, err
    }
    if l.Status == model.ListingArchived {
        return nil, false, invalid("listingId", "listing is archived")
    }
    if l.UserID == buyer.ID {
        return nil, false, invalid("listingId", "you cannot open a chat on your own listing")
    }
    return s.chats.FindOrCreate(ctx, l.ID, buyer.ID, l.UserID)
}

// ListChats returns the user's conversations, most recent activity first.
func (s *ChatService) ListChats(ctx context.Context, user *model.User) ([]model.ChatSummary, error) {
    if user == nil {
        return nil, ErrUnauthorized
    }
    out, err := s.chats.ListForUser(ctx, user.ID)
    if err != nil {
        return nil, err
    }
    if out == nil {
        out = []model.ChatSummary{}
    }
    return out, nil
}

// participantChat loads the chat and checks that user takes part in it.
func (s *ChatService) participantChat(ctx context.Context, user *model.User, chatID uint64) (*model.Chat, error) {
    if user == nil {
        return nil, ErrUnauthorized
    }
    c, err := s.chats.GetByID(ctx, chatID)
    if errors.Is(err, repository.ErrChatNotFound) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if !c.HasParticipant(user.ID) {
        return nil, ErrForbidden
    }
    return c, nil
}

// Authorize checks that user may read chatID.
func (s *ChatService) Authorize(ctx context.Context, user *model.User, chatID uint64) (*model.Chat, error) {
    return s.participantChat(ctx, user, chatID)
}

// Messages returns the messages of a chat after afterID (zero for all) and
// marks the other participant's messages as read.
func (s *ChatService) Messages(ctx context.Context, user *model.User, chatID, afterID uint64) ([]model.Message, error) {
    c, err := s.participantChat(ctx, user, chatID)
    if err != nil {
        return nil, err
    }
    msgs, err := s.chats.Messages(ctx, c.ID, afterID)
    if err != nil {
        return nil, err
    }
    if err := s.chats.MarkRead(ctx, c.ID, user.ID); err != nil {
        return nil, err
    }
    return msgs, nil
}

// SendMessage stores a message from user in chatID.
func (s *ChatService) SendMessage(ctx context.Context, user *model.User, chatID uint64, content string) (*model.Message, error) {
    c, err := s.participantChat(ctx, user, chatID)
    if err != nil {
        return nil, err
    }
    content = strings.TrimSpace(content)
    if content == "" {
        return nil, invalid("content", "message content is required")
    }
    if utf8.RuneCountInString(content) > MaxMessageLen {
        return nil, invalid("content", "message content must be at most %d characters", MaxMessageLen)
    }
    msg, err := s.chats.AddMessage(ctx, c.ID, user.ID, content)
    if err != nil {
        return nil, err
    }
    if s.notify != nil {
        s.notify.NotifyMessage(msg)
    }
    emit(ctx, s.events, queue.Event{Type: queue.ChatMessage, UserID: user.ID, ChatID: c.ID, ListingID: c.ListingID, MessageID: msg.ID})
    return msg, nil
}
