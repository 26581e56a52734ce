package splitproof

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	badgerconfig "github.com/weisyn/splitproof/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/splitproof/internal/config/storage/memory"
	"github.com/weisyn/splitproof/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/splitproof/internal/core/infrastructure/storage/memory"
	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/testutil"
	"github.com/weisyn/splitproof/pkg/types"
)

// ============================================================================
// validator.go 测试
// ============================================================================

// 同一证明在多个测试中复用，避免重复设置；夹具存活到进程结束
var (
	fixtureOnce sync.Once
	fixtureErr  error
	fixture     struct {
		env  *testEnv
		rows []types.RowHash
		root types.MerkleRoot
		seed types.Seed
		res  *ProofResult
	}
)

func provenFixture(t *testing.T) (*testEnv, *ProofResult) {
	t.Helper()
	fixtureOnce.Do(func() {
		fixtureErr = buildFixture()
	})
	require.NoError(t, fixtureErr)
	return fixture.env, fixture.res
}

func buildFixture() error {
	logger := testutil.NewTestLogger()
	store, err := badger.New(badgerconfig.NewFromOptions(&badgerconfig.BadgerOptions{
		InMemory:     true,
		MemTableSize: 8 << 20,
	}), logger)
	if err != nil {
		return err
	}
	cache, err := memory.New(memoryconfig.New(nil), logger)
	if err != nil {
		return err
	}
	bus := testutil.NewTestEventBus()
	m, err := NewManager(logger, testOptions(), store, cache, bus)
	if err != nil {
		return err
	}
	if err := m.Start(); err != nil {
		return err
	}
	fixture.env = &testEnv{manager: m, bus: bus, store: store, cache: cache}

	fixture.rows = testutil.NewTestRows(8)
	if fixture.root, err = commitment.Commit(fixture.rows); err != nil {
		return err
	}
	fixture.seed = testutil.NewTestSeed(0x5a)
	fixture.res, err = m.Prove(context.Background(), fixture.rows, fixture.seed, fixture.root)
	return err
}

func TestValidator_TamperedTrainIndices(t *testing.T) {
	env, res := provenFixture(t)
	ctx := context.Background()

	tampered := res.Outputs()
	tampered.TrainIndices = append([]uint32(nil), res.TrainIndices...)
	tampered.TrainIndices[0], tampered.TrainIndices[1] = tampered.TrainIndices[1], tampered.TrainIndices[0]

	ok, err := env.manager.VerifyOutputs(ctx, res.Proof, fixture.root, fixture.seed, tampered.Marshal())
	require.NoError(t, err)
	require.False(t, ok)

	// 替换为测试集中的索引
	all := map[uint32]bool{}
	for _, idx := range res.TrainIndices {
		all[idx] = true
	}
	for i := uint32(0); i < 8; i++ {
		if !all[i] {
			tampered.TrainIndices = append([]uint32(nil), res.TrainIndices...)
			tampered.TrainIndices[2] = i
			break
		}
	}
	ok, err = env.manager.VerifyOutputs(ctx, res.Proof, fixture.root, fixture.seed, tampered.Marshal())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestValidator_TamperedRoots(t *testing.T) {
	env, res := provenFixture(t)
	ctx := context.Background()

	ok, err := env.manager.Verify(ctx, res.Proof, fixture.root, fixture.seed, res.TestRoot, res.TrainRoot)
	require.NoError(t, err)
	require.False(t, ok)

	other := res.OriginalRoot
	other[31] ^= 1
	ok, err = env.manager.Verify(ctx, res.Proof, other, fixture.seed, res.TrainRoot, res.TestRoot)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestValidator_WrongSeed(t *testing.T) {
	env, res := provenFixture(t)

	ok, err := env.manager.Verify(context.Background(), res.Proof, fixture.root, testutil.NewTestSeed(0x5b), res.TrainRoot, res.TestRoot)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestValidator_ShapePolicy(t *testing.T) {
	env, res := provenFixture(t)

	// 50/50 下 n=8 的 k=4，与证明的 k=6 不符
	ok, err := env.manager.Verify(context.Background(), res.Proof, fixture.root, fixture.seed, res.TrainRoot, res.TestRoot,
		WithRatio(types.Ratio{Train: 1, Total: 2}))
	require.NoError(t, err)
	require.False(t, ok)

	_, err = env.manager.Verify(context.Background(), res.Proof, fixture.root, fixture.seed, res.TrainRoot, res.TestRoot,
		WithRatio(types.Ratio{Train: 3, Total: 2}))
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestValidator_VKHashMismatch(t *testing.T) {
	env, res := provenFixture(t)

	parsed, err := ParseEnvelope(res.Proof)
	require.NoError(t, err)
	parsed.VKHash[0] ^= 0xff

	ok, err := env.manager.Verify(context.Background(), parsed.Marshal(), fixture.root, fixture.seed, res.TrainRoot, res.TestRoot)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestValidator_CorruptedProofBytes(t *testing.T) {
	env, res := provenFixture(t)

	parsed, err := ParseEnvelope(res.Proof)
	require.NoError(t, err)
	parsed.Proof = parsed.Proof[:len(parsed.Proof)/2]

	_, err = env.manager.Verify(context.Background(), parsed.Marshal(), fixture.root, fixture.seed, res.TrainRoot, res.TestRoot)
	require.ErrorIs(t, err, ErrMalformedProof)
}

func TestValidator_NonCanonicalRoot(t *testing.T) {
	env, res := provenFixture(t)

	var bad types.MerkleRoot
	for i := range bad {
		bad[i] = 0xff
	}
	_, err := env.manager.Verify(context.Background(), res.Proof, bad, fixture.seed, res.TrainRoot, res.TestRoot)
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestValidator_VerdictCache(t *testing.T) {
	env, res := provenFixture(t)
	ctx := context.Background()

	seed := fixture.seed
	seed[0] ^= 0x10
	for i := 0; i < 2; i++ {
		ok, err := env.manager.Verify(ctx, res.Proof, fixture.root, seed, res.TrainRoot, res.TestRoot)
		require.NoError(t, err)
		require.False(t, ok)
	}

	events := env.bus.Events(types.EventTypeProofVerified)
	require.GreaterOrEqual(t, len(events), 2)
	last := events[len(events)-1].Args[0].(types.VerificationEvent)
	require.True(t, last.Cached)
	require.False(t, last.Accepted)
}

func TestValidator_MalformedOutputs(t *testing.T) {
	env, res := provenFixture(t)

	_, err := env.manager.VerifyOutputs(context.Background(), res.Proof, fixture.root, fixture.seed, res.PublicOutputs[:40])
	require.ErrorIs(t, err, ErrMalformedProof)
}
