package splitproof

import (
	"testing"

	"github.com/stretchr/testify/require"

	spconfig "github.com/weisyn/splitproof/internal/config/splitproof"
	memoryconfig "github.com/weisyn/splitproof/internal/config/storage/memory"
	"github.com/weisyn/splitproof/internal/core/infrastructure/storage/memory"
	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/testutil"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/splitproof/pkg/types"
)

type testEnv struct {
	manager *Manager
	bus     *testutil.RecordingEventBus
	store   storage.BadgerStore
	cache   storage.MemoryStore
}

func testOptions(mutate ...func(*spconfig.SplitProofOptions)) *spconfig.SplitProofOptions {
	opts := spconfig.DefaultOptions()
	opts.MaxRows = 64
	for _, m := range mutate {
		m(opts)
	}
	return opts
}

func newTestCache(t *testing.T) storage.MemoryStore {
	t.Helper()
	cache, err := memory.New(memoryconfig.New(nil), testutil.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

// newTestEnv 创建已启动的管理器
func newTestEnv(t *testing.T, mutate ...func(*spconfig.SplitProofOptions)) *testEnv {
	t.Helper()
	store := testutil.NewTestBadgerStore(t)
	return newTestEnvWithStore(t, store, mutate...)
}

func newTestEnvWithStore(t *testing.T, store storage.BadgerStore, mutate ...func(*spconfig.SplitProofOptions)) *testEnv {
	t.Helper()
	env := &testEnv{
		bus:   testutil.NewTestEventBus(),
		store: store,
		cache: newTestCache(t),
	}
	m, err := NewManager(testutil.NewTestLogger(), testOptions(mutate...), env.store, env.cache, env.bus)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	t.Cleanup(func() { _ = m.Stop() })
	env.manager = m
	return env
}

func testDataset(t *testing.T, n int) ([]types.RowHash, types.MerkleRoot) {
	t.Helper()
	rows := testutil.NewTestRows(n)
	root, err := commitment.Commit(rows)
	require.NoError(t, err)
	return rows, root
}
