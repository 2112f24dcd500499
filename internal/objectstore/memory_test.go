package objectstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aedocs/internal/correrr"
)

func TestMemoryPutFetchRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	content := []byte("hello, archive")
	hash, err := store.Put(ctx, "a/doc.txt", content)
	require.NoError(t, err)

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), hash)

	got, err := store.Fetch(ctx, "a/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestMemoryFetchNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, err := store.Fetch(ctx, "missing")
	assert.True(t, correrr.IsNotFound(err))
}

func TestMemoryFetchRange(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	_, err := store.Put(ctx, "k", []byte("0123456789"))
	require.NoError(t, err)

	got, err := store.FetchRange(ctx, "k", 3, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("3456"), got)
}

func TestMemoryStat(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	content := []byte("stat me")
	_, err := store.Put(ctx, "s", content)
	require.NoError(t, err)

	attrs, err := store.Stat(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), attrs.Size)
	assert.WithinDuration(t, time.Now(), attrs.ModTime, 5*time.Second)
}

func TestMemoryPresignRequiresExisting(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, err := store.Presign(ctx, "nope", time.Minute)
	assert.True(t, correrr.IsNotFound(err))

	_, err = store.Put(ctx, "present", []byte("x"))
	require.NoError(t, err)
	url, err := store.Presign(ctx, "present", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "present")
}

func TestVerifyHashDetectsMismatch(t *testing.T) {
	data := []byte("payload")
	sum := sha256.Sum256(data)
	good := hex.EncodeToString(sum[:])

	assert.NoError(t, VerifyHash(data, good))
	err := VerifyHash(data, "deadbeef")
	assert.True(t, correrr.IsIntegrity(err))
}
