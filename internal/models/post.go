package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like records that a user liked a post. At most one per user per post.
type Like struct {
	User string `json:"user" bson:"user"`
}

// Comment is embedded in its post. Name and Avatar are copied from the
// commenter at write time.
type Comment struct {
	ID        primitive.ObjectID `json:"_id"    bson:"_id"`
	User      string             `json:"user"   bson:"user"`
	Text      string             `json:"text"   bson:"text"`
	Name      string             `json:"name"   bson:"name"`
	Avatar    string             `json:"avatar" bson:"avatar"`
	CreatedAt time.Time          `json:"date"   bson:"date"`
}

// Post is a single document in the posts collection. Likes and Comments
// are kept most-recent-first.
type Post struct {
	ID        primitive.ObjectID `json:"_id"      bson:"_id,omitempty"`
	User      string             `json:"user"     bson:"user"`
	Text      string             `json:"text"     bson:"text"`
	Name      string             `json:"name"     bson:"name"`
	Avatar    string             `json:"avatar"   bson:"avatar"`
	Likes     []Like             `json:"likes"    bson:"likes"`
	Comments  []Comment          `json:"comments" bson:"comments"`
	CreatedAt time.Time          `json:"date"     bson:"date"`
}

// TextRequest is the JSON body for creating a post or a comment.
type TextRequest struct {
	Text string `json:"text"`
}
