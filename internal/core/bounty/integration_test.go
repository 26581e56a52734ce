package bounty

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	spconfig "github.com/weisyn/splitproof/internal/config/splitproof"
	"github.com/weisyn/splitproof/internal/core/splitproof"
	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/core/splitproof/dataset"
	"github.com/weisyn/splitproof/internal/testutil"
	"github.com/weisyn/splitproof/pkg/types"
)

// TestBountyWithRealProof 示例数据集 N=4、75/25：生成证明后提交悬赏
func TestBountyWithRealProof(t *testing.T) {
	if testing.Short() {
		t.Skip("跳过电路证明测试")
	}
	ctx := context.Background()
	store := testutil.NewTestBadgerStore(t)

	opts := spconfig.DefaultOptions()
	opts.MaxRows = 16
	opts.Ratio = types.Ratio{Train: 75, Total: 100}
	m, err := splitproof.NewManager(testutil.NewTestLogger(), opts, store, nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	t.Cleanup(func() { _ = m.Stop() })

	rows := dataset.ExampleRows(4)
	root, err := commitment.Commit(rows)
	require.NoError(t, err)
	seed := testutil.NewTestSeed(3)

	res, err := m.Prove(ctx, rows, seed, root)
	require.NoError(t, err)
	require.Len(t, res.TrainIndices, 3)

	r := New(testutil.NewTestLogger(), store, m, nil, nil)
	b, err := r.Create(ctx, CreateParams{
		Creator:      "alice",
		Amount:       1,
		Seed:         seed,
		OriginalRoot: root,
		Ratio:        opts.Ratio,
		Deadline:     time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	// 种子不同的悬赏不接受该证明
	other, err := r.Create(ctx, CreateParams{
		Amount:       1,
		Seed:         testutil.NewTestSeed(4),
		OriginalRoot: root,
		Ratio:        opts.Ratio,
		Deadline:     time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = r.VerifySplit(ctx, other.ID, "bob", res.Proof, res.PublicOutputs)
	require.ErrorIs(t, err, ErrProofRejected)

	verified, err := r.VerifySplit(ctx, b.ID, "bob", res.Proof, res.PublicOutputs)
	require.NoError(t, err)
	require.Equal(t, res.TestRoot, *verified.TestsetCommitment)
	require.Equal(t, res.TrainRoot, *verified.TrainRoot)
}
