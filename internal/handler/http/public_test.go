package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhysmalcolm13/agentity/internal/app"
	"github.com/Rhysmalcolm13/agentity/internal/service"
	"github.com/Rhysmalcolm13/agentity/internal/validators"
	"github.com/Rhysmalcolm13/agentity/models"
)

// ── contact ──────────────────────────────────────────────────────────────

func TestSubmitContact(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"received", nil, http.StatusOK, app.MsgContactReceived},
		{"invalid", &validators.ValidationError{Field: "message", Rule: "min", Message: "Message must be at least 10 characters"}, http.StatusBadRequest, "Message must be at least 10 characters"},
		{"store failure", errors.New("insert failed"), http.StatusInternalServerError, app.MsgSomethingWentWrong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contact := &mockContactService{
				submitFn: func(_ context.Context, req models.ContactRequest) error {
					assert.Equal(t, models.ContactCategory("support"), req.Category)
					return tt.err
				},
			}
			h := newTestHandler(t, &service.Services{ContactService: contact})

			rec := serve(h, http.MethodPost, "/api/contact", strings.NewReader(
				`{"category":"support","name":"Jane","email":"jane@example.com","message":"The dashboard is slow."}`))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeBody(t, rec)["message"])
		})
	}
}

// ── blog ─────────────────────────────────────────────────────────────────

func TestListBlogPosts(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   models.BlogQuery
	}{
		{
			name:   "defaults",
			target: "/api/blog",
			want:   models.BlogQuery{},
		},
		{
			name:   "all filters",
			target: "/api/blog?page=2&limit=3&search=agents&category=Engineering&tag=go&sort=popular",
			want: models.BlogQuery{
				Page: 2, Limit: 3, Search: "agents", Category: "Engineering", Tag: "go", Sort: models.BlogSortPopular,
			},
		},
		{
			name:   "malformed numbers",
			target: "/api/blog?page=two&limit=-",
			want:   models.BlogQuery{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blog := &mockBlogService{
				listFn: func(_ context.Context, q models.BlogQuery) (models.BlogPage, error) {
					assert.Equal(t, tt.want, q)
					return models.BlogPage{Posts: []models.BlogPost{}, TotalPages: 0, CurrentPage: 1}, nil
				},
			}
			h := newTestHandler(t, &service.Services{BlogService: blog})

			rec := serve(h, http.MethodGet, tt.target, nil)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"posts":[],"totalPages":0,"currentPage":1,"totalPosts":0}`, rec.Body.String())
		})
	}
}

func TestRSSFeed(t *testing.T) {
	feed := []byte(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<rss></rss>")
	blog := &mockBlogService{
		rssFn: func(context.Context) ([]byte, error) { return feed, nil },
	}
	h := newTestHandler(t, &service.Services{BlogService: blog})

	rec := serve(h, http.MethodGet, "/rss.xml", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "s-maxage=3600")
	assert.Equal(t, string(feed), rec.Body.String())
}

func TestRSSFeed_Failure(t *testing.T) {
	blog := &mockBlogService{
		rssFn: func(context.Context) ([]byte, error) { return nil, errors.New("xml: unsupported type") },
	}
	h := newTestHandler(t, &service.Services{BlogService: blog})

	rec := serve(h, http.MethodGet, "/rss.xml", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ── version ──────────────────────────────────────────────────────────────

func TestGetServerVersion(t *testing.T) {
	h := newTestHandler(t, &service.Services{AppInfoService: &mockAppInfoService{version: "1.4.2"}})

	rec := serve(h, http.MethodGet, "/api/version", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1.4.2", rec.Body.String())
}
