package model

import "time"

// Friend request lifecycle: pending -> accepted | declined, both terminal.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

// FriendRequest is directed (sender asked recipient). At most one
// non-declined request may exist per unordered user pair; the store
// enforces that on create.
type FriendRequest struct {
	ID          string    `bson:"_id" json:"id"`
	SenderID    string    `bson:"sender_id" json:"senderId"`
	RecipientID string    `bson:"recipient_id" json:"recipientId"`
	Status      string    `bson:"status" json:"status"`
	CreateTime  time.Time `bson:"create_time" json:"createdAt"`
}
