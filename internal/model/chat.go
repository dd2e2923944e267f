package model

import "time"

// Chat is a conversation between a buyer and the seller about one listing.
// The (ListingID, BuyerID, SellerID) triple is unique.
type Chat struct {
    ID        uint64    `json:"id" db:"id"`
    ListingID uint64    `json:"listingId" db:"listing_id"`
    BuyerID   uint64    `json:"buyerId" db:"buyer_id"`
    SellerID  uint64    `json:"sellerId" db:"seller_id"`
    CreatedAt time.Time `json:"createdAt" db:"created_at"`
    UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// HasParticipant reports whether userID is the buyer or the seller.
func (c *Chat) HasParticipant(userID uint64) bool {
    return c != nil && (c.BuyerID == userID || c.SellerID == userID)
}

// Message is a single chat message.
type Message struct {
    ID        uint64    `json:"id" db:"id"`
    ChatID    uint64    `json:"chatId" db:"chat_id"`
    SenderID  uint64    `json:"senderId" db:"sender_id"`
    Content   string    `json:"content" db:"content"`
    Read      bool      `json:"read" db:"is_read"`
    CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ChatListingSummary is the part of a listing shown in the chat list.
type ChatListingSummary struct {
    ID       uint64  `json:"id"`
    Title    string  `json:"title"`
    Status   string  `json:"status"`
    Currency string  `json:"currency"`
    Price    float64 `json:"price"`
}

// ChatSummary is one entry of a user's chat list.
type ChatSummary struct {
    Chat
    Listing     ChatListingSummary `json:"listing"`
    OtherUser   PublicUser         `json:"otherUser"`
    LastMessage *Message           `json:"lastMessage"`
    UnreadCount int                `json:"unreadCount"`
}
