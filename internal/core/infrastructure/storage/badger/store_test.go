package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	badgerconfig "github.com/weisyn/splitproof/internal/config/storage/badger"
	interfaces "github.com/weisyn/splitproof/pkg/interfaces/infrastructure/storage"
)

// 初始化测试环境
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(badgerconfig.NewFromOptions(&badgerconfig.BadgerOptions{
		Path:         t.TempDir(),
		MemTableSize: 8 << 20,
	}), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_BasicOperations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	val, err := store.Get(ctx, []byte("missing"))
	require.NoError(t, err)
	require.Nil(t, val)

	require.NoError(t, store.Set(ctx, []byte("k1"), []byte("v1")))
	val, err = store.Get(ctx, []byte("k1"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), val)

	exists, err := store.Exists(ctx, []byte("k1"))
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, store.Delete(ctx, []byte("k1")))
	exists, err = store.Exists(ctx, []byte("k1"))
	require.NoError(t, err)
	require.False(t, exists)
}

func TestStore_PrefixScan(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, []byte("job/a"), []byte("1")))
	require.NoError(t, store.Set(ctx, []byte("job/b"), []byte("2")))
	require.NoError(t, store.Set(ctx, []byte("artifact/x"), []byte("3")))

	result, err := store.PrefixScan(ctx, []byte("job/"))
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{"job/a": []byte("1"), "job/b": []byte("2")}, result)
}

func TestStore_SetWithTTL(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetWithTTL(ctx, []byte("ttl"), []byte("v"), time.Second))
	val, err := store.Get(ctx, []byte("ttl"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)

	require.Eventually(t, func() bool {
		v, err := store.Get(ctx, []byte("ttl"))
		return err == nil && v == nil
	}, 5*time.Second, 100*time.Millisecond)
}

func TestStore_RunInTransaction(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
		if err := tx.Set([]byte("a"), []byte("1")); err != nil {
			return err
		}
		v, err := tx.Get([]byte("a"))
		require.NoError(t, err)
		require.Equal(t, []byte("1"), v)
		return tx.Set([]byte("b"), []byte("2"))
	})
	require.NoError(t, err)

	// 回滚：函数返回错误时写入不可见
	boom := errors.New("boom")
	err = store.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
		require.NoError(t, tx.Set([]byte("c"), []byte("3")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	exists, err := store.Exists(ctx, []byte("c"))
	require.NoError(t, err)
	require.False(t, exists)
}

func TestStore_InMemoryAndClose(t *testing.T) {
	store, err := New(badgerconfig.NewFromOptions(&badgerconfig.BadgerOptions{InMemory: true, MemTableSize: 8 << 20}), nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, []byte("k"), []byte("v")))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	require.ErrorIs(t, store.Set(ctx, []byte("k"), []byte("v")), ErrStoreClosing)
}
