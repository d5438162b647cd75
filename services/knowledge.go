package services

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"nexdoc/console/api"
	"nexdoc/console/collection"
	"nexdoc/console/models"
)

// knowledgeLimit matches the page size the original screen requested.
const knowledgeLimit = 100

// KnowledgeService backs the knowledge base. The backend also accepts
// category/search query parameters, and SetQuery forwards them so deep
// filtering happens server-side; the local filter engine still applies the
// same predicate in between keystrokes, so typing needs no round trip.
type KnowledgeService struct {
	api      *api.Client
	loc      *time.Location
	validate *validator.Validate

	Store *collection.Store[models.Article]

	mu       sync.Mutex
	category string
	search   string
}

// NewKnowledgeService wires an article store against GET /knowledge/.
func NewKnowledgeService(client *api.Client, loc *time.Location) *KnowledgeService {
	s := &KnowledgeService{
		api:      client,
		loc:      loc,
		validate: validator.New(),
	}
	s.Store = collection.NewStore(s.fetchAll)
	return s
}

func (s *KnowledgeService) fetchAll(ctx context.Context) ([]models.Article, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", knowledgeLimit))

	s.mu.Lock()
	if s.category != "" && s.category != collection.FilterAll {
		params.Set("category", s.category)
	}
	if s.search != "" {
		params.Set("search", s.search)
	}
	s.mu.Unlock()

	var raw []models.RawArticle
	if err := s.api.GetJSON(ctx, "/knowledge/?"+params.Encode(), &raw); err != nil {
		return nil, err
	}

	articles := make([]models.Article, 0, len(raw))
	for _, r := range raw {
		a, err := models.NormalizeArticle(r, s.loc)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// SetQuery updates the server-side filter parameters and refetches. Stale
// responses from superseded queries are discarded by the store's sequence
// tagging, so rapid changes cannot regress the list.
func (s *KnowledgeService) SetQuery(ctx context.Context, category, search string) error {
	s.mu.Lock()
	s.category = category
	s.search = search
	s.mu.Unlock()
	return s.Store.Fetch(ctx)
}

// FilterConfig returns the knowledge screen's filter wiring: search over
// title and summary, exact category match (articles have no tags).
func (s *KnowledgeService) FilterConfig() collection.FilterConfig[models.Article] {
	return collection.FilterConfig[models.Article]{
		SearchFields: func(a models.Article) []string { return []string{a.Title, a.Summary} },
		Categories:   func(a models.Article) []string { return []string{a.Category} },
	}
}

// ArticleInput mirrors POST /knowledge/.
type ArticleInput struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"required"`
}

// Create publishes a new article and refetches the list.
func (s *KnowledgeService) Create(ctx context.Context, in ArticleInput) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("invalid article input: %w", err)
	}
	if err := s.api.PostJSON(ctx, "/knowledge/", in, nil); err != nil {
		return err
	}
	return s.Store.Fetch(ctx)
}
