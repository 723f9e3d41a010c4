package service

import (
	"cmp"
	"context"
	"encoding/xml"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/models"
)

// Blog listing defaults.
const (
	DefaultBlogPage  = 1
	DefaultBlogLimit = 9
	MaxBlogLimit     = 100
)

const rssDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

type blogService struct {
	repo    store.BlogRepository
	baseURL string
	now     func() time.Time
}

func NewBlogService(repo store.BlogRepository, baseURL string) BlogService {
	return &blogService{repo: repo, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// ListPosts filters, sorts and paginates the posts. Search, category and tag
// filters combine; search requires every whitespace-separated term to occur
// in the title, excerpt or content.
func (s *blogService) ListPosts(ctx context.Context, q models.BlogQuery) (models.BlogPage, error) {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return models.BlogPage{}, fmt.Errorf("error listing posts: %w", err)
	}

	if q.Page < 1 {
		q.Page = DefaultBlogPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultBlogLimit
	}
	q.Limit = min(q.Limit, MaxBlogLimit)

	if terms := strings.Fields(strings.ToLower(q.Search)); len(terms) > 0 {
		posts = slices.DeleteFunc(posts, func(p models.BlogPost) bool {
			text := strings.ToLower(p.Title + " " + p.Excerpt + " " + p.Content)
			for _, term := range terms {
				if !strings.Contains(text, term) {
					return true
				}
			}
			return false
		})
	}
	if q.Category != "" {
		posts = slices.DeleteFunc(posts, func(p models.BlogPost) bool {
			return !slices.Contains(p.Categories, q.Category)
		})
	}
	if q.Tag != "" {
		posts = slices.DeleteFunc(posts, func(p models.BlogPost) bool {
			return !slices.ContainsFunc(p.Tags, func(t models.Tag) bool { return t.Slug == q.Tag })
		})
	}

	switch q.Sort {
	case models.BlogSortRecent:
		slices.SortStableFunc(posts, func(a, b models.BlogPost) int {
			return b.PublishedAt.Compare(a.PublishedAt)
		})
	case models.BlogSortPopular:
		slices.SortStableFunc(posts, func(a, b models.BlogPost) int {
			return cmp.Compare(b.Views, a.Views)
		})
	}

	total := len(posts)
	start := min((q.Page-1)*q.Limit, total)
	end := min(start+q.Limit, total)

	page := posts[start:end]
	if page == nil {
		page = []models.BlogPost{}
	}

	return models.BlogPage{
		Posts:       page,
		TotalPages:  (total + q.Limit - 1) / q.Limit,
		CurrentPage: q.Page,
		TotalPosts:  total,
	}, nil
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	AtomLink      rssLink   `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type rssLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssCDATA struct {
	Text string `xml:",cdata"`
}

type rssItem struct {
	Title       rssCDATA `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Description rssCDATA `xml:"description"`
	Author      string   `xml:"author"`
	Categories  []string `xml:"category"`
}

// RSSFeed renders every post as an RSS 2.0 document.
func (s *blogService) RSSFeed(ctx context.Context) ([]byte, error) {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	feed := rssFeed{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         "Agentity Blog",
			Link:          s.baseURL,
			Description:   "Latest updates and insights from Agentity",
			Language:      "en",
			LastBuildDate: s.now().UTC().Format(rssDateLayout),
			AtomLink: rssLink{
				Href: s.baseURL + "/rss.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: make([]rssItem, 0, len(posts)),
		},
	}

	for _, p := range posts {
		link := s.baseURL + "/blog/" + p.Slug
		feed.Channel.Items = append(feed.Channel.Items, rssItem{
			Title:       rssCDATA{p.Title},
			Link:        link,
			GUID:        link,
			PubDate:     p.PublishedAt.UTC().Format(rssDateLayout),
			Description: rssCDATA{p.Excerpt},
			Author:      fmt.Sprintf("%s (%s)", p.Author.Email, p.Author.Name),
			Categories:  p.Categories,
		})
	}

	body, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error rendering rss feed: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
