package model

import "time"

// Message is a direct message between two users. Immutable after creation
// except Content (edit flips Edited) and existence (delete is a hard
// delete, no tombstone).
type Message struct {
	ID          string    `bson:"_id" json:"id"`
	SenderID    string    `bson:"sender_id" json:"senderId"`
	RecipientID string    `bson:"recipient_id" json:"recipientId"`
	Content     string    `bson:"content" json:"content"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	Edited      bool      `bson:"edited" json:"edited"`
}
