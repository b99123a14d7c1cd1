package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Chou1102/QuickChatWeb/internal/models"
)

type ChatRepository interface {
	Create(ctx context.Context, c *models.Chat) error
	FindByID(ctx context.Context, id string) (*models.Chat, error)
	FindForUser(ctx context.Context, userID string, limit int64) ([]*models.Chat, error)
	FindOneToOne(ctx context.Context, userA, userB string) (*models.Chat, error)
	AddUser(ctx context.Context, chatID, userID string) error
	RemoveUser(ctx context.Context, chatID, userID string) error
	Rename(ctx context.Context, chatID, name string) error
	SetLatestMessage(ctx context.Context, chatID, messageID string) error
	Delete(ctx context.Context, chatID string) error
}

type mongoChatRepo struct{ coll *mongo.Collection }

func NewMongoChatRepository(coll *mongo.Collection) ChatRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "users", Value: 1}},
		Options: options.Index().SetName("users_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &mongoChatRepo{coll: coll}
}

func (r *mongoChatRepo) Create(ctx context.Context, c *models.Chat) error {
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, c)
	return err
}

func (r *mongoChatRepo) FindByID(ctx context.Context, id string) (*models.Chat, error) {
	var c models.Chat
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *mongoChatRepo) FindForUser(ctx context.Context, userID string, limit int64) ([]*models.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}).SetLimit(limit)
	cur, err := r.coll.Find(ctx, bson.M{"users": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Chat
	for cur.Next(ctx) {
		var c models.Chat
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (r *mongoChatRepo) FindOneToOne(ctx context.Context, userA, userB string) (*models.Chat, error) {
	filter := bson.M{
		"is_group_chat": false,
		"users":         bson.M{"$all": bson.A{userA, userB}},
	}
	var c models.Chat
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *mongoChatRepo) AddUser(ctx context.Context, chatID, userID string) error {
	update := bson.M{"$addToSet": bson.M{"users": userID}, "$set": bson.M{"updated_at": time.Now().UTC()}}
	return r.updateByID(ctx, chatID, update)
}

func (r *mongoChatRepo) RemoveUser(ctx context.Context, chatID, userID string) error {
	update := bson.M{"$pull": bson.M{"users": userID}, "$set": bson.M{"updated_at": time.Now().UTC()}}
	return r.updateByID(ctx, chatID, update)
}

func (r *mongoChatRepo) Rename(ctx context.Context, chatID, name string) error {
	update := bson.M{"$set": bson.M{"chat_name": name, "updated_at": time.Now().UTC()}}
	return r.updateByID(ctx, chatID, update)
}

// SetLatestMessage races with itself across concurrent sends; the last
// writer by completion order wins.
func (r *mongoChatRepo) SetLatestMessage(ctx context.Context, chatID, messageID string) error {
	update := bson.M{"$set": bson.M{"latest_message": messageID, "updated_at": time.Now().UTC()}}
	return r.updateByID(ctx, chatID, update)
}

func (r *mongoChatRepo) Delete(ctx context.Context, chatID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": chatID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoChatRepo) updateByID(ctx context.Context, chatID string, update bson.M) error {
	res, err := r.coll.UpdateByID(ctx, chatID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
