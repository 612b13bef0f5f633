package store

import (
	"context"

	chatmodel "chatapp/module/chat/model"
	usermodel "chatapp/module/user/model"
)

// ConversationStore is the durable message log between user pairs.
// Production impl is Mongo (mongo.go); tests and -mem mode use the memory
// impl (mem.go). All methods return errs-coded errors: ErrNotFound when an
// id does not resolve, ErrStoreFailure on backend trouble.
type ConversationStore interface {
	Insert(ctx context.Context, m *chatmodel.Message) error
	Get(ctx context.Context, id string) (*chatmodel.Message, error)
	// ListByPair returns every message between a and b, ascending by
	// creation time.
	ListByPair(ctx context.Context, a, b string) ([]chatmodel.Message, error)
	// UpdateContent replaces the content and marks the message edited,
	// returning the updated document.
	UpdateContent(ctx context.Context, id, content string) (*chatmodel.Message, error)
	Delete(ctx context.Context, id string) error
	// DeleteByPair removes the whole conversation. Deleting nothing is not
	// an error.
	DeleteByPair(ctx context.Context, a, b string) error
}

// SocialStore owns user accounts, friendships and friend requests. The
// delivery core only reads from it; the API layer mutates it.
type SocialStore interface {
	CreateUser(ctx context.Context, u *usermodel.User) error // ErrConflict on duplicate username
	GetUser(ctx context.Context, id string) (*usermodel.User, error)
	GetUserByUsername(ctx context.Context, username string) (*usermodel.User, error)
	ListUsers(ctx context.Context, excludeID string) ([]usermodel.User, error)

	AreFriends(ctx context.Context, a, b string) (bool, error)
	AddFriendship(ctx context.Context, a, b string) error
	RemoveFriendship(ctx context.Context, a, b string) error

	// CreateFriendRequest fails with ErrConflict if a non-declined request
	// already exists for the unordered pair.
	CreateFriendRequest(ctx context.Context, r *chatmodel.FriendRequest) error
	GetFriendRequest(ctx context.Context, id string) (*chatmodel.FriendRequest, error)
	ListPendingRequests(ctx context.Context, recipientID string) ([]chatmodel.FriendRequest, error)
	SetRequestStatus(ctx context.Context, id, status string) error
	DeleteRequestByPair(ctx context.Context, a, b string) error
}
