package models

import "time"

// Author is the writer of a blog post.
type Author struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Email  string            `json:"email"`
	Avatar string            `json:"avatar"`
	Bio    string            `json:"bio"`
	Role   string            `json:"role"`
	Social map[string]string `json:"social,omitempty"`
}

// Category groups blog posts by topic.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Tag is a free-form label attached to blog posts.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// BlogPost is a single article of the static blog store.
type BlogPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	CoverImage  string    `json:"coverImage"`
	Author      Author    `json:"author"`
	Category    Category  `json:"category"`
	Categories  []string  `json:"categories"`
	Tags        []Tag     `json:"tags"`
	ReadingTime int       `json:"readingTime"`
	PublishedAt time.Time `json:"publishedAt"`
	Featured    bool      `json:"featured"`
	Views       int       `json:"views"`
	Likes       int       `json:"likes"`
}

// BlogSort selects the ordering of a blog listing.
type BlogSort string

const (
	BlogSortNone    BlogSort = ""
	BlogSortRecent  BlogSort = "recent"
	BlogSortPopular BlogSort = "popular"
)

// BlogQuery holds the filters of GET /api/blog.
type BlogQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
	Tag      string
	Sort     BlogSort
}

// BlogPage is the paginated response of GET /api/blog.
type BlogPage struct {
	Posts       []BlogPost `json:"posts"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
	TotalPosts  int        `json:"totalPosts"`
}
