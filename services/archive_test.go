package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexdoc/console/collection"
)

func TestArchiveFetchPopulatesEnvelope(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewArchiveService(client, time.UTC)
	require.NoError(t, svc.Store.Fetch(context.Background()))

	assert.Equal(t, 3, svc.Store.Len())
	assert.Len(t, svc.Folders(), 3, "one folder per contract type")
	assert.Len(t, svc.Stats(), 4)
	assert.Contains(t, svc.Tags(), "已审查")

	item, ok := svc.Store.Get("1")
	require.True(t, ok)
	assert.Equal(t, "技术服务", item.Folder)
	assert.True(t, item.HasTag("已审查"))
}

func TestArchiveFilterByFolderAndTag(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewArchiveService(client, time.UTC)
	require.NoError(t, svc.Store.Fetch(context.Background()))
	cfg := svc.FilterConfig()

	inFolder := collection.Derive(svc.Store.Records(), collection.FilterState{
		Status: "保密",
	}, cfg)
	require.Len(t, inFolder, 1)
	assert.Equal(t, "保密协议-合作方B", inFolder[0].Name)

	reviewed := collection.Derive(svc.Store.Records(), collection.FilterState{
		Category: "已审查",
	}, cfg)
	assert.Len(t, reviewed, 2, "only analyzed contracts carry the reviewed tag")
}

func TestArchiveDeleteRefetchesEnvelope(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewArchiveService(client, time.UTC)
	require.NoError(t, svc.Store.Fetch(context.Background()))
	require.Len(t, svc.Folders(), 3)

	require.NoError(t, svc.Delete(context.Background(), 2))

	// Folder counts and totals come from the same envelope, so the refetch
	// keeps them consistent with the list.
	assert.Equal(t, 2, svc.Store.Len())
	assert.Len(t, svc.Folders(), 2)
}

func TestArchiveDownload(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	svc := NewArchiveService(client, time.UTC)

	var buf bytes.Buffer
	n, err := svc.Download(context.Background(), 3, &buf)
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.Contains(t, buf.String(), "保密协议-合作方B")
}
