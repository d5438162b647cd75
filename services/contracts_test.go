package services

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexdoc/console/api"
	"nexdoc/console/collection"
	"nexdoc/console/models"
)

func TestContractsFetchNormalizesRows(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewContractService(client, time.UTC)
	require.NoError(t, svc.Store.Fetch(context.Background()))
	require.Equal(t, 3, svc.Store.Len())

	c, ok := svc.Store.Get("1")
	require.True(t, ok)
	assert.Equal(t, "技术服务合同-2024-001", c.Name)
	assert.Equal(t, models.ContractAnalyzed, c.Status)
	assert.Equal(t, 2, c.Risks.Total())
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`, c.UploadDate,
		"timestamps are display-formatted at ingestion")

	pending, ok := svc.Store.Get("2")
	require.True(t, ok)
	assert.Zero(t, pending.Risks.Total())
	assert.Empty(t, pending.Results)
}

func TestContractsFetchWithoutTokenFails(t *testing.T) {
	_, client, _ := newTestEnv(t)

	svc := NewContractService(client, time.UTC)
	err := svc.Store.Fetch(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)

	state, _ := svc.Store.State()
	assert.Equal(t, collection.Failed, state)
}

func TestContractDeleteRemovesLocally(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewContractService(client, time.UTC)
	require.NoError(t, svc.Store.Fetch(context.Background()))

	require.NoError(t, svc.Delete(context.Background(), 2))
	assert.Equal(t, 2, svc.Store.Len())
	_, ok := svc.Store.Get("2")
	assert.False(t, ok)
}

func TestBulkDeleteIsBestEffort(t *testing.T) {
	mock, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewContractService(client, time.UTC)
	require.NoError(t, svc.Store.Fetch(context.Background()))

	svc.Store.Select("1")
	svc.Store.Select("2")
	svc.Store.Select("3")
	mock.FailNextDelete(2)

	result := svc.BulkDelete(context.Background(), []int{1, 2, 3})

	assert.Equal(t, []int{1, 3}, result.Deleted)
	require.Len(t, result.Failed, 1)
	var apiErr *api.APIError
	require.ErrorAs(t, result.Failed[2], &apiErr)
	require.Error(t, result.Err())
	assert.Contains(t, result.Err().Error(), "1 of 3")

	// Successes stay deleted, the failure keeps its record and selection.
	assert.Equal(t, 1, svc.Store.Len())
	_, ok := svc.Store.Get("2")
	assert.True(t, ok)
	assert.Equal(t, []string{"2"}, svc.Store.Selection())
}

func TestUploadAndAnalyze(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewContractService(client, time.UTC)
	require.NoError(t, svc.Store.Fetch(context.Background()))

	var (
		mu     sync.Mutex
		phases []UploadPhase
	)
	onChange := func(up Upload) {
		mu.Lock()
		phases = append(phases, up.Phase)
		mu.Unlock()
	}

	content := strings.NewReader("fake pdf bytes")
	up, err := svc.Upload(context.Background(), "新合同.pdf", 14, content, onChange)
	require.NoError(t, err)

	assert.Equal(t, PhaseUploaded, up.Phase)
	assert.Equal(t, 100, up.Progress)
	assert.Equal(t, 4, up.ContractID)
	assert.NotEmpty(t, up.TempID)
	require.NotEmpty(t, phases)
	assert.Equal(t, PhaseUploading, phases[0])
	assert.Equal(t, PhaseUploaded, phases[len(phases)-1])

	// The settle step is a wholesale refetch.
	assert.Equal(t, 4, svc.Store.Len())

	up, err = svc.Analyze(context.Background(), up, nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseResults, up.Phase)
	assert.Equal(t, 100, up.Progress)
	require.Len(t, up.Results, 1)
	assert.Equal(t, models.SeverityMedium, up.Results[0].Severity)
}

func TestAnalyzeRequiresUploadedPhase(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewContractService(client, time.UTC)
	_, err := svc.Analyze(context.Background(), Upload{Phase: PhaseUploading}, nil)
	assert.Error(t, err)
}

func TestUploadFailureKeepsPendingEntry(t *testing.T) {
	_, client, _ := newTestEnv(t)

	// Logged out, so the upload endpoint rejects the request.
	svc := NewContractService(client, time.UTC)
	up, err := svc.Upload(context.Background(), "新合同.pdf", 14, bytes.NewReader([]byte("x")), nil)
	require.Error(t, err)
	assert.Equal(t, PhaseUploadFailed, up.Phase)
	assert.Zero(t, up.Progress)
	assert.NotEmpty(t, up.Err)
}

func TestContractDownloadAndExport(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewContractService(client, time.UTC)

	var buf bytes.Buffer
	n, err := svc.Download(context.Background(), 1, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF"))

	buf.Reset()
	_, err = svc.ExportPDF(context.Background(), 1, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "技术服务合同-2024-001")
}

func TestDemoSamplesNeedNoAuth(t *testing.T) {
	_, client, _ := newTestEnv(t)

	svc := NewContractService(client, time.UTC)
	samples, err := svc.DemoSamples(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.NotEmpty(t, samples[0].Filename)
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.0 KB", FormatFileSize(1024))
	assert.Equal(t, "2.3 MB", FormatFileSize(2411725))
	assert.Equal(t, "1.5 GB", FormatFileSize(1610612736))
}
