package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultGenre is stored when a novel is created without a genre.
	DefaultGenre = "General"
	// AllGenres disables the genre filter of a catalog query.
	AllGenres = "All"
)

type Novel struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Author        string             `bson:"author" json:"author"`
	Cover         string             `bson:"cover" json:"cover"`
	Description   string             `bson:"description" json:"description"`
	Genre         string             `bson:"genre" json:"genre"`
	Tags          []string           `bson:"tags" json:"tags"`
	PublishedDate time.Time          `bson:"publishedDate" json:"publishedDate"`
	Views         int                `bson:"views" json:"views"`
	Likes         int                `bson:"likes" json:"likes"`
	Chapters      []Chapter          `bson:"chapters" json:"chapters"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Chapter is owned by its novel and only reachable through it.
type Chapter struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Text     string             `bson:"text" json:"text"`
	Comments []Comment          `bson:"comments" json:"comments"`
}

// Comment is anchored to a point of the chapter text or illustration.
type Comment struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Text     string             `bson:"text" json:"text"`
	Date     time.Time          `bson:"date" json:"date"`
	User     CommentAuthor      `bson:"user" json:"user"`
	Position Position           `bson:"position" json:"position"`
}

// CommentAuthor is a snapshot of the commenter at the time of writing.
type CommentAuthor struct {
	Name  string `bson:"name" json:"name"`
	Image string `bson:"image" json:"image"`
}

type Position struct {
	X float64 `bson:"x" json:"x"`
	Y float64 `bson:"y" json:"y"`
}

// CatalogFilter selects novels for the catalog. Empty Search and an empty
// or "All" Genre match everything.
type CatalogFilter struct {
	Search string
	Genre  string
}

// FiltersGenre reports whether the filter restricts the genre.
func (f CatalogFilter) FiltersGenre() bool {
	return f.Genre != "" && f.Genre != AllGenres
}

// CatalogPage is one page of catalog results.
type CatalogPage struct {
	Novels     []Novel `json:"novels"`
	TotalPages int     `json:"totalPages"`
}
