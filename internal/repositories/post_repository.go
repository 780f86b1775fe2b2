package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/kavro/tidepool/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations. Soft-deleted
// posts are invisible to every method except SoftDelete itself.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, authorID *uint, skip, limit int, sort models.SortOrder) ([]models.Post, error)
	Count(ctx context.Context, authorID *uint) (int64, error)
	SoftDelete(ctx context.Context, id string) (*models.Post, error)
	FindRecentByAuthors(ctx context.Context, authorIDs []uint, limit int) ([]models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB.
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository.
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the compound index backing per-author feed scans.
// Sort and limit are pushed into this index so feed queries never touch the
// full collection.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

func (r *MongoPostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) List(ctx context.Context, authorID *uint, skip, limit int, sort models.SortOrder) ([]models.Post, error) {
	filter := bson.M{"is_deleted": false}
	if authorID != nil {
		filter["author_id"] = *authorID
	}

	dir := -1
	if sort == models.SortAsc {
		dir = 1
	}
	findOptions := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: dir}, {Key: "_id", Value: dir}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *MongoPostRepository) Count(ctx context.Context, authorID *uint) (int64, error) {
	filter := bson.M{"is_deleted": false}
	if authorID != nil {
		filter["author_id"] = *authorID
	}
	return r.collection.CountDocuments(ctx, filter)
}

// SoftDelete marks a post deleted. The is_deleted guard in the filter makes
// concurrent deletes of the same post safe: the loser matches no document
// and gets ErrNotFound.
func (r *MongoPostRepository) SoftDelete(ctx context.Context, id string) (*models.Post, error) {
	now := time.Now()
	update := bson.M{"$set": bson.M{"is_deleted": true, "updated_at": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "is_deleted": false}, update, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// FindRecentByAuthors returns the most recent active posts across the given
// authors, sorted newest first with _id as the deterministic tie-break. The
// sort and limit run against the (author_id, created_at desc) index rather
// than materializing every matching post.
func (r *MongoPostRepository) FindRecentByAuthors(ctx context.Context, authorIDs []uint, limit int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{"author_id": bson.M{"$in": authorIDs}, "is_deleted": false}
	findOptions := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
