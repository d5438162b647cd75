package mockapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"nexdoc/console/models"
)

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	search := strings.ToLower(q.Get("search"))
	limit := -1
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.RawArticle, 0, len(s.articles))
	for _, a := range s.articles {
		if category != "" && category != "all" && a.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Title), search) &&
			!strings.Contains(strings.ToLower(a.Summary), search) {
			continue
		}
		if limit >= 0 && len(out) >= limit {
			break
		}
		out = append(out, models.RawArticle{
			ID:       a.ID,
			Title:    a.Title,
			Summary:  a.Summary,
			Content:  a.Content,
			Category: a.Category,
			Date:     a.Date,
			Views:    a.Views,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Title == "" || in.Content == "" || in.Category == "" {
		writeDetail(w, http.StatusBadRequest, "Title, content and category are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summary := in.Content
	if runes := []rune(summary); len(runes) > 60 {
		summary = string(runes[:60]) + "…"
	}
	a := &articleRecord{
		ID:       s.nextArticleID,
		Title:    in.Title,
		Summary:  summary,
		Content:  in.Content,
		Category: in.Category,
		Date:     nowNaiveUTC(),
	}
	s.nextArticleID++
	s.articles = append([]*articleRecord{a}, s.articles...)

	writeJSON(w, http.StatusOK, map[string]interface{}{"id": a.ID, "message": "Article created"})
}
