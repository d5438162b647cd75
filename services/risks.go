package services

import (
	"context"
	"fmt"
	"sync"

	"nexdoc/console/api"
	"nexdoc/console/collection"
	"nexdoc/console/models"
)

// RiskService is the dispatcher behind the risk center. Marking a risk
// resolved is the canonical low-risk status flip: the PATCH is confirmed
// first, then the single record is patched in place with no refetch.
type RiskService struct {
	api   *api.Client
	guard *actionGuard

	Store *collection.Store[models.Risk]

	mu    sync.Mutex
	stats []models.RiskStat
}

type risksEnvelope struct {
	Stats []models.RiskStat `json:"stats"`
	Risks []models.RawRisk  `json:"risks"`
}

// NewRiskService wires a risk store against GET /risks/.
func NewRiskService(client *api.Client) *RiskService {
	s := &RiskService{
		api:   client,
		guard: newActionGuard(),
	}
	s.Store = collection.NewEnvelopeStore(s.fetchAll)
	return s
}

// fetchAll returns the normalized risks plus a commit for the stat tiles.
// The commit runs only when the store accepts the response, so the tiles and
// the list always come from the same fetch.
func (s *RiskService) fetchAll(ctx context.Context) ([]models.Risk, func(), error) {
	var envelope risksEnvelope
	if err := s.api.GetJSON(ctx, "/risks/", &envelope); err != nil {
		return nil, nil, err
	}

	risks := make([]models.Risk, 0, len(envelope.Risks))
	for _, raw := range envelope.Risks {
		r, err := models.NormalizeRisk(raw)
		if err != nil {
			return nil, nil, err
		}
		risks = append(risks, r)
	}

	commit := func() {
		s.mu.Lock()
		s.stats = envelope.Stats
		s.mu.Unlock()
	}
	return risks, commit, nil
}

// Stats returns the stat tiles from the last successful fetch.
func (s *RiskService) Stats() []models.RiskStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RiskStat, len(s.stats))
	copy(out, s.stats)
	return out
}

// FilterConfig returns the risk screen's filter wiring: search over title
// and contract name, category over the risk category, and the severity
// selector on the status dimension.
func (s *RiskService) FilterConfig() collection.FilterConfig[models.Risk] {
	return collection.FilterConfig[models.Risk]{
		SearchFields: func(r models.Risk) []string { return []string{r.Title, r.Contract} },
		Categories:   func(r models.Risk) []string { return []string{r.Category} },
		Status:       func(r models.Risk) string { return r.Severity },
	}
}

// UpdateStatus PATCHes one risk's status and, once the server confirms,
// flips the local record in place.
func (s *RiskService) UpdateStatus(ctx context.Context, risk models.Risk, status string) error {
	if !s.guard.begin(risk.ID) {
		return ErrActionInFlight
	}
	defer s.guard.end(risk.ID)

	path := fmt.Sprintf("/risks/%d/%d/status", risk.ContractID, risk.OriginalID)
	payload := map[string]string{"status": status}
	if err := s.api.PatchJSON(ctx, path, payload, nil); err != nil {
		return err
	}

	s.Store.MutateLocal(risk.ID, func(r *models.Risk) {
		r.Status = status
	})
	return nil
}

// Resolve marks a risk resolved.
func (s *RiskService) Resolve(ctx context.Context, risk models.Risk) error {
	return s.UpdateStatus(ctx, risk, models.RiskResolved)
}
