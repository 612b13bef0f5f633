package store

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	chatmodel "chatapp/module/chat/model"
	usermodel "chatapp/module/user/model"
	"chatapp/tools/errs"
)

// MongoStore implements both store interfaces on three collections:
// users, messages, friend_requests.
type MongoStore struct {
	users    *mongo.Collection
	messages *mongo.Collection
	requests *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:    db.Collection("users"),
		messages: db.Collection("messages"),
		requests: db.Collection("friend_requests"),
	}
}

var (
	_ ConversationStore = (*MongoStore)(nil)
	_ SocialStore       = (*MongoStore)(nil)
)

// EnsureIndexes is called once at startup. The unique username index is
// what turns a racing duplicate registration into ErrConflict.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return storeErr(err, "ensure users index")
	}
	_, err = s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "recipient_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return storeErr(err, "ensure messages index")
	}
	return nil
}

func storeErr(err error, op string) error {
	return pkgerrors.Wrap(errs.ErrStoreFailure, op+": "+err.Error())
}

func pairFilter(a, b string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender_id": a, "recipient_id": b},
		bson.M{"sender_id": b, "recipient_id": a},
	}}
}

// ===== ConversationStore =====

func (s *MongoStore) Insert(ctx context.Context, m *chatmodel.Message) error {
	if _, err := s.messages.InsertOne(ctx, m); err != nil {
		return storeErr(err, "insert message")
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*chatmodel.Message, error) {
	var m chatmodel.Message
	err := s.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrNotFound.WithDetail("message " + id)
	}
	if err != nil {
		return nil, storeErr(err, "get message")
	}
	return &m, nil
}

func (s *MongoStore) ListByPair(ctx context.Context, a, b string) ([]chatmodel.Message, error) {
	cur, err := s.messages.Find(ctx, pairFilter(a, b),
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, storeErr(err, "list messages")
	}
	var out []chatmodel.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeErr(err, "decode messages")
	}
	return out, nil
}

func (s *MongoStore) UpdateContent(ctx context.Context, id, content string) (*chatmodel.Message, error) {
	var m chatmodel.Message
	err := s.messages.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content, "edited": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrNotFound.WithDetail("message " + id)
	}
	if err != nil {
		return nil, storeErr(err, "update message")
	}
	return &m, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.messages.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr(err, "delete message")
	}
	if res.DeletedCount == 0 {
		return errs.ErrNotFound.WithDetail("message " + id)
	}
	return nil
}

func (s *MongoStore) DeleteByPair(ctx context.Context, a, b string) error {
	if _, err := s.messages.DeleteMany(ctx, pairFilter(a, b)); err != nil {
		return storeErr(err, "delete conversation")
	}
	return nil
}

// ===== SocialStore =====

func (s *MongoStore) CreateUser(ctx context.Context, u *usermodel.User) error {
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.ErrConflict.WithDetail("username taken")
		}
		return storeErr(err, "create user")
	}
	return nil
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*usermodel.User, error) {
	var u usermodel.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrNotFound.WithDetail("user " + id)
	}
	if err != nil {
		return nil, storeErr(err, "get user")
	}
	return &u, nil
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*usermodel.User, error) {
	var u usermodel.User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrNotFound.WithDetail("user " + username)
	}
	if err != nil {
		return nil, storeErr(err, "get user by username")
	}
	return &u, nil
}

func (s *MongoStore) ListUsers(ctx context.Context, excludeID string) ([]usermodel.User, error) {
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$ne": excludeID}},
		options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, storeErr(err, "list users")
	}
	var out []usermodel.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeErr(err, "decode users")
	}
	return out, nil
}

func (s *MongoStore) AreFriends(ctx context.Context, a, b string) (bool, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{"_id": a, "friends": b})
	if err != nil {
		return false, storeErr(err, "check friendship")
	}
	return n > 0, nil
}

func (s *MongoStore) AddFriendship(ctx context.Context, a, b string) error {
	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": a}, bson.M{"$addToSet": bson.M{"friends": b}}); err != nil {
		return storeErr(err, "add friendship")
	}
	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": b}, bson.M{"$addToSet": bson.M{"friends": a}}); err != nil {
		return storeErr(err, "add friendship")
	}
	return nil
}

func (s *MongoStore) RemoveFriendship(ctx context.Context, a, b string) error {
	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": a}, bson.M{"$pull": bson.M{"friends": b}}); err != nil {
		return storeErr(err, "remove friendship")
	}
	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": b}, bson.M{"$pull": bson.M{"friends": a}}); err != nil {
		return storeErr(err, "remove friendship")
	}
	return nil
}

func (s *MongoStore) CreateFriendRequest(ctx context.Context, r *chatmodel.FriendRequest) error {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"sender_id": r.SenderID, "recipient_id": r.RecipientID},
			bson.M{"sender_id": r.RecipientID, "recipient_id": r.SenderID},
		},
		"status": bson.M{"$ne": chatmodel.RequestDeclined},
	}
	err := s.requests.FindOne(ctx, filter).Err()
	if err == nil {
		return errs.ErrConflict.WithDetail("request already exists for pair")
	}
	if err != mongo.ErrNoDocuments {
		return storeErr(err, "check friend request")
	}
	if _, err := s.requests.InsertOne(ctx, r); err != nil {
		return storeErr(err, "create friend request")
	}
	return nil
}

func (s *MongoStore) GetFriendRequest(ctx context.Context, id string) (*chatmodel.FriendRequest, error) {
	var r chatmodel.FriendRequest
	err := s.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrNotFound.WithDetail("friend request " + id)
	}
	if err != nil {
		return nil, storeErr(err, "get friend request")
	}
	return &r, nil
}

func (s *MongoStore) ListPendingRequests(ctx context.Context, recipientID string) ([]chatmodel.FriendRequest, error) {
	cur, err := s.requests.Find(ctx,
		bson.M{"recipient_id": recipientID, "status": chatmodel.RequestPending},
		options.Find().SetSort(bson.D{{Key: "create_time", Value: 1}}))
	if err != nil {
		return nil, storeErr(err, "list pending requests")
	}
	var out []chatmodel.FriendRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeErr(err, "decode pending requests")
	}
	return out, nil
}

func (s *MongoStore) SetRequestStatus(ctx context.Context, id, status string) error {
	res, err := s.requests.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return storeErr(err, "set request status")
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound.WithDetail("friend request " + id)
	}
	return nil
}

func (s *MongoStore) DeleteRequestByPair(ctx context.Context, a, b string) error {
	if _, err := s.requests.DeleteMany(ctx, pairFilter(a, b)); err != nil {
		return storeErr(err, "delete friend request")
	}
	return nil
}
