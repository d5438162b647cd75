package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexdoc/console/api"
	"nexdoc/console/collection"
	"nexdoc/console/models"
)

func TestRisksFetchFlattensFindings(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewRiskService(client)
	require.NoError(t, svc.Store.Fetch(context.Background()))
	require.Equal(t, 3, svc.Store.Len())

	r, ok := svc.Store.Get("1_1")
	require.True(t, ok)
	assert.Equal(t, 1, r.ContractID)
	assert.Equal(t, 1, r.OriginalID)
	assert.Equal(t, "技术服务合同-2024-001", r.Contract)
	assert.Equal(t, models.SeverityHigh, r.Severity)

	stats := svc.Stats()
	require.Len(t, stats, 4)
	byName := make(map[string]int, len(stats))
	for _, s := range stats {
		byName[s.Name] = s.Value
	}
	assert.Equal(t, 1, byName["高风险"])
	assert.Equal(t, 1, byName["中风险"])
	assert.Equal(t, 1, byName["已解决"])
}

func TestResolvePatchesLocallyWithoutRefetch(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewRiskService(client)
	require.NoError(t, svc.Store.Fetch(context.Background()))

	risk, ok := svc.Store.Get("1_1")
	require.True(t, ok)
	require.Equal(t, models.RiskPending, risk.Status)

	require.NoError(t, svc.Resolve(context.Background(), risk))

	// In-place patch: same list length, same order, one status changed.
	assert.Equal(t, 3, svc.Store.Len())
	patched, _ := svc.Store.Get("1_1")
	assert.Equal(t, models.RiskResolved, patched.Status)
	other, _ := svc.Store.Get("1_2")
	assert.Equal(t, models.RiskPending, other.Status)

	// The server saw it too: a fresh fetch agrees.
	require.NoError(t, svc.Store.Fetch(context.Background()))
	refetched, _ := svc.Store.Get("1_1")
	assert.Equal(t, models.RiskResolved, refetched.Status)
}

func TestUpdateStatusRejectsUnknownRisk(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewRiskService(client)
	require.NoError(t, svc.Store.Fetch(context.Background()))

	err := svc.UpdateStatus(context.Background(), models.Risk{
		ID: "9_9", ContractID: 9, OriginalID: 9,
	}, models.RiskResolved)
	require.Error(t, err)

	// Nothing changed locally.
	for _, r := range svc.Store.Records() {
		if r.ID == "1_1" || r.ID == "1_2" {
			assert.Equal(t, models.RiskPending, r.Status)
		}
	}
}

type tokenOnlySession struct{}

func (tokenOnlySession) Token() string       { return "test-token" }
func (tokenOnlySession) HandleUnauthorized() {}

// Two overlapping risk fetches where the older response settles last: the
// stat tiles must follow the records and stay with the newer response.
func TestRiskStatsFollowAcceptedResponse(t *testing.T) {
	type call struct {
		release chan int
	}
	var (
		mu    sync.Mutex
		calls []*call
	)
	started := make(chan struct{}, 2)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := &call{release: make(chan int)}
		mu.Lock()
		calls = append(calls, c)
		mu.Unlock()
		started <- struct{}{}
		v := <-c.release
		fmt.Fprintf(w, `{
			"stats": [{"name": "高风险", "value": %d, "change": 0, "color": "red"}],
			"risks": [{"id": "%d_1", "title": "违约金比例过高", "contract": "合同", "type": "high", "status": "pending", "date": "2024-01-01"}]
		}`, v, v)
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, tokenOnlySession{}, 5*time.Second)
	svc := NewRiskService(client)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = svc.Store.Fetch(context.Background())
	}()
	<-started
	go func() {
		defer wg.Done()
		_ = svc.Store.Fetch(context.Background())
	}()
	<-started

	mu.Lock()
	first, second := calls[0], calls[1]
	mu.Unlock()

	// The newer fetch settles first, then the stale one arrives.
	second.release <- 2
	first.release <- 1
	wg.Wait()

	records := svc.Store.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "2_1", records[0].ID)

	stats := svc.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Value,
		"stat tiles must come from the same response as the records")
}

func TestRiskFilterConfig(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewRiskService(client)
	require.NoError(t, svc.Store.Fetch(context.Background()))

	cfg := svc.FilterConfig()

	high := collection.Derive(svc.Store.Records(), collection.FilterState{
		Status: models.SeverityHigh,
	}, cfg)
	require.Len(t, high, 1)
	assert.Equal(t, "1_1", high[0].ID)

	byContract := collection.Derive(svc.Store.Records(), collection.FilterState{
		Search: "保密协议",
	}, cfg)
	require.Len(t, byContract, 1)
	assert.Equal(t, "3_1", byContract[0].ID)
}
