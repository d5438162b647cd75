package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"nexdoc/console/api"
	"nexdoc/console/collection"
	"nexdoc/console/models"
)

// ArchiveService backs the archive screen. One envelope fetch feeds the
// stat tiles, the folder sidebar, the tag cloud, and the item store.
// Deleting an archived contract changes folder counts and totals as well as
// list membership, so it settles with a full refetch.
type ArchiveService struct {
	api   *api.Client
	loc   *time.Location
	guard *actionGuard

	Store *collection.Store[models.ArchiveItem]

	mu      sync.Mutex
	stats   []models.ArchiveStat
	folders []models.Folder
	tags    []string
}

// NewArchiveService wires an archive store against GET /archive/.
func NewArchiveService(client *api.Client, loc *time.Location) *ArchiveService {
	s := &ArchiveService{
		api:   client,
		loc:   loc,
		guard: newActionGuard(),
	}
	s.Store = collection.NewEnvelopeStore(s.fetchAll)
	return s
}

// fetchAll returns the normalized items plus a commit for the rest of the
// envelope. The commit runs only when the store accepts the response, so the
// stats, folders, and tags always come from the same fetch as the list.
func (s *ArchiveService) fetchAll(ctx context.Context) ([]models.ArchiveItem, func(), error) {
	var data models.ArchiveData
	if err := s.api.GetJSON(ctx, "/archive/", &data); err != nil {
		return nil, nil, err
	}

	items := make([]models.ArchiveItem, 0, len(data.Contracts))
	for _, raw := range data.Contracts {
		item, err := models.NormalizeArchiveItem(raw, s.loc)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}

	commit := func() {
		s.mu.Lock()
		s.stats = data.Stats
		s.folders = data.Folders
		s.tags = data.Tags
		s.mu.Unlock()
	}
	return items, commit, nil
}

// Stats returns the storage stat tiles from the last successful fetch.
func (s *ArchiveService) Stats() []models.ArchiveStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ArchiveStat, len(s.stats))
	copy(out, s.stats)
	return out
}

// Folders returns the folder sidebar entries from the last successful fetch.
func (s *ArchiveService) Folders() []models.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Folder, len(s.folders))
	copy(out, s.folders)
	return out
}

// Tags returns the tag vocabulary from the last successful fetch.
func (s *ArchiveService) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// FilterConfig returns the archive screen's filter wiring: search over the
// name, the tag selector on the category dimension, the folder selector on
// the status dimension (exact match).
func (s *ArchiveService) FilterConfig() collection.FilterConfig[models.ArchiveItem] {
	return collection.FilterConfig[models.ArchiveItem]{
		SearchFields: func(a models.ArchiveItem) []string { return []string{a.Name} },
		Categories:   func(a models.ArchiveItem) []string { return a.Tags },
		Status:       func(a models.ArchiveItem) string { return a.Folder },
	}
}

// Delete removes an archived contract (same endpoint as the contracts
// screen) and refetches the whole envelope so stats and folder counts stay
// consistent.
func (s *ArchiveService) Delete(ctx context.Context, id int) error {
	key := fmt.Sprintf("archive:%d", id)
	if !s.guard.begin(key) {
		return ErrActionInFlight
	}
	defer s.guard.end(key)

	if err := s.api.Delete(ctx, fmt.Sprintf("/contracts/%d", id)); err != nil {
		return err
	}
	return s.Store.Fetch(ctx)
}

// Download streams the archived file into w.
func (s *ArchiveService) Download(ctx context.Context, id int, w io.Writer) (int64, error) {
	return s.api.Download(ctx, fmt.Sprintf("/contracts/%d/download", id), w)
}
