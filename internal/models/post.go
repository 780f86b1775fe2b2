package models

import "time"

// Post is a social media post stored in MongoDB. Posts are never physically
// removed; delete sets IsDeleted and every read path filters it out.
type Post struct {
	ID        string    `json:"id" bson:"_id"`
	AuthorID  uint      `json:"author_id" bson:"author_id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	IsDeleted bool      `json:"-" bson:"is_deleted"`
}

// SortOrder is the direction of a createdAt sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// PostFilter selects and orders posts for list queries. A nil AuthorID
// matches all authors.
type PostFilter struct {
	AuthorID *uint
	Page     int
	Limit    int
	Sort     SortOrder
}

// FeedEntry is one item of a viewer's feed: a post joined with its author's
// display name.
type FeedEntry struct {
	PostID     string    `json:"post_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name"`
}

// CreatePostRequest defines the request body for creating a new post.
type CreatePostRequest struct {
	Content string `json:"content" validate:"required"`
}
