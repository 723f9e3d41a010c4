package http

import (
	"net/http"
	"strconv"

	"github.com/Rhysmalcolm13/agentity/internal/app"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
	"github.com/Rhysmalcolm13/agentity/models"
)

type dashboardResponse struct {
	User     models.UserSummary     `json:"user"`
	Progress models.ProfileProgress `json:"progress"`
}

func (h *Handler) submitContact(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, nil)
		return
	}

	if err := h.services.ContactService.Submit(r.Context(), req); err != nil {
		respondError(w, r, err, nil)
		return
	}

	writeMessage(w, app.MsgContactReceived, http.StatusOK)
}

// listBlogPosts serves GET /api/blog. Malformed page and limit values fall
// back to the defaults.
func (h *Handler) listBlogPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := h.services.BlogService.ListPosts(r.Context(), models.BlogQuery{
		Page:     page,
		Limit:    limit,
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Sort:     models.BlogSort(q.Get("sort")),
	})
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	utils.WriteJSON(w, res, http.StatusOK)
}

func (h *Handler) rssFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.services.BlogService.RSSFeed(r.Context())
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "s-maxage=3600, stale-while-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(feed)
}

// dashboard returns the data of the dashboard shell. It is reached only with
// a session and a complete profile.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := utils.GetUserFromContext(r.Context())

	progress, err := h.services.ProfileService.GetProgress(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	utils.WriteJSON(w, dashboardResponse{User: user.Summary(), Progress: progress}, http.StatusOK)
}
