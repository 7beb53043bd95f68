package minio

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/keyip-molkit/pkg/errors"
)

const methaneMolfile = "methane\n\n\n  1  0  0  0  0  0  0  0  0  0999 V2000\n    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0\nM  END\n"

func newTestStore(limit int64) (*memoryAPI, MolfileStore) {
	api := newMemoryAPI("mols")
	client := NewMinIOClientWithAPI(api, &MinIOConfig{Bucket: "mols", MaxObjectBytes: limit}, nil)
	return api, NewMolfileStore(client, nil)
}

func TestStore_PutFetch(t *testing.T) {
	_, store := newTestStore(0)
	ctx := context.Background()

	info, err := store.Put(ctx, "incoming/methane.mol", methaneMolfile)
	require.NoError(t, err)
	assert.Equal(t, int64(len(methaneMolfile)), info.Size)

	text, err := store.Fetch(ctx, "incoming/methane.mol")
	require.NoError(t, err)
	assert.Equal(t, methaneMolfile, text)

	ok, err := store.Exists(ctx, "incoming/methane.mol")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_FetchMissing(t *testing.T) {
	_, store := newTestStore(0)

	_, err := store.Fetch(context.Background(), "nope.mol")
	assert.True(t, errors.IsNotFound(err))

	ok, err := store.Exists(context.Background(), "nope.mol")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_FetchBackendError(t *testing.T) {
	api, store := newTestStore(0)
	api.err = assert.AnError

	_, err := store.Fetch(context.Background(), "a.mol")
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeSourceError))
}

func TestStore_SizeLimit(t *testing.T) {
	api, store := newTestStore(16)
	ctx := context.Background()

	_, err := store.Put(ctx, "big.mol", strings.Repeat("x", 17))
	assert.True(t, errors.IsValidation(err))

	api.buckets["mols"]["big.mol"] = []byte(strings.Repeat("x", 17))
	_, err = store.Fetch(ctx, "big.mol")
	assert.True(t, errors.IsValidation(err))
}

func TestStore_RejectsUnsafeKeys(t *testing.T) {
	_, store := newTestStore(0)
	ctx := context.Background()

	for _, key := range []string{"", "/abs.mol", "../up.mol", "a//b.mol", "a/./b.mol"} {
		_, err := store.Fetch(ctx, key)
		assert.Equal(t, errors.ErrCodeValidation, errors.GetCode(err), key)
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	_, store := newTestStore(0)
	ctx := context.Background()

	for _, k := range []string{"batch/1.mol", "batch/2.mol", "other/3.mol"} {
		_, err := store.Put(ctx, k, methaneMolfile)
		require.NoError(t, err)
	}

	objs, err := store.List(ctx, "batch/")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "batch/1.mol", objs[0].Key)

	require.NoError(t, store.Delete(ctx, "batch/1.mol"))
	objs, err = store.List(ctx, "batch/")
	require.NoError(t, err)
	assert.Len(t, objs, 1)
}

//Personal.AI order the ending
