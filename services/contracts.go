package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"nexdoc/console/api"
	"nexdoc/console/collection"
	"nexdoc/console/models"
)

// ContractService is the dispatcher behind the contracts screen. Deletes
// settle with a local removal; uploads settle with a full refetch, since
// splicing a server-shaped row into the local list is exactly the
// ghost-row bug the wholesale policy avoids.
type ContractService struct {
	api   *api.Client
	loc   *time.Location
	guard *actionGuard

	Store *collection.Store[models.Contract]
}

// NewContractService wires a contract store against GET /contracts/.
func NewContractService(client *api.Client, loc *time.Location) *ContractService {
	s := &ContractService{
		api:   client,
		loc:   loc,
		guard: newActionGuard(),
	}
	s.Store = collection.NewStore(s.fetchAll)
	return s
}

func (s *ContractService) fetchAll(ctx context.Context) ([]models.Contract, error) {
	var raw []models.RawContract
	if err := s.api.GetJSON(ctx, "/contracts/", &raw); err != nil {
		return nil, err
	}
	contracts := make([]models.Contract, 0, len(raw))
	for _, r := range raw {
		c, err := models.NormalizeContract(r, s.loc)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}

// FilterConfig returns the contracts screen's filter wiring: search over the
// name, category over the contract type, status over the lifecycle status.
func (s *ContractService) FilterConfig() collection.FilterConfig[models.Contract] {
	return collection.FilterConfig[models.Contract]{
		SearchFields: func(c models.Contract) []string { return []string{c.Name} },
		Categories:   func(c models.Contract) []string { return []string{c.Type} },
		Status:       func(c models.Contract) string { return c.Status },
	}
}

// Delete removes one contract. The caller has already taken the user
// through the confirmation step; cancelling there has zero side effects
// because nothing reaches this method.
func (s *ContractService) Delete(ctx context.Context, id int) error {
	key := fmt.Sprintf("contract:%d", id)
	if !s.guard.begin(key) {
		return ErrActionInFlight
	}
	defer s.guard.end(key)

	if err := s.api.Delete(ctx, fmt.Sprintf("/contracts/%d", id)); err != nil {
		return err
	}
	s.Store.RemoveLocal(fmt.Sprintf("%d", id))
	return nil
}

// BulkDeleteResult reports a best-effort bulk delete: ids that were deleted
// stay deleted even when later ids fail, and each failure is reported
// individually.
type BulkDeleteResult struct {
	Deleted []int
	Failed  map[int]error
}

// Err returns a summary error when any id failed.
func (r BulkDeleteResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d contracts could not be deleted", len(r.Failed), len(r.Failed)+len(r.Deleted))
}

// BulkDelete deletes the given contracts one by one. Successes are removed
// from the store (which prunes the selection); failures leave their records
// and report the error.
func (s *ContractService) BulkDelete(ctx context.Context, ids []int) BulkDeleteResult {
	result := BulkDeleteResult{Failed: make(map[int]error)}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			result.Failed[id] = err
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	return result
}

// Download streams the original uploaded file into w.
func (s *ContractService) Download(ctx context.Context, id int, w io.Writer) (int64, error) {
	return s.api.Download(ctx, fmt.Sprintf("/contracts/%d/download", id), w)
}

// ExportPDF streams the analysis report PDF into w.
func (s *ContractService) ExportPDF(ctx context.Context, id int, w io.Writer) (int64, error) {
	return s.api.Download(ctx, fmt.Sprintf("/contracts/%d/export/pdf", id), w)
}

// DemoSample is a bundled sample contract offered on the public demo.
type DemoSample struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
}

// DemoSamples lists the sample contracts available without authentication.
func (s *ContractService) DemoSamples(ctx context.Context) ([]DemoSample, error) {
	var samples []DemoSample
	if err := s.api.GetJSON(ctx, "/demo/samples", &samples); err != nil {
		return nil, err
	}
	return samples, nil
}
