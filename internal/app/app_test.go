package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/core/splitproof/dataset"
	"github.com/weisyn/splitproof/pkg/types"
)

const testConfig = `{
  "app_name": "splitproof-test",
  "log": {"level": "error", "to_console": false},
  "storage": {"in_memory": true},
  "splitproof": {"max_rows": 16, "ratio": "75/25", "proof_timeout_sec": 120}
}`

func TestStart_WithoutAPI(t *testing.T) {
	a, err := Start(context.Background(),
		WithEmbeddedConfig([]byte(testConfig)),
		WithDataDir(t.TempDir()),
		WithoutAPI(),
	)
	require.NoError(t, err)
	defer func() { require.NoError(t, a.Stop()) }()

	require.NotNil(t, a.Manager())
	require.NotNil(t, a.Bounties())
	require.Equal(t, 16, a.Manager().Options().MaxRows)
	require.Equal(t, types.Ratio{Train: 75, Total: 100}, a.Manager().Options().Ratio)

	rows := dataset.ExampleRows(4)
	root, err := commitment.Commit(rows)
	require.NoError(t, err)

	var seed types.Seed
	seed[31] = 7
	res, err := a.Manager().Prove(context.Background(), rows, seed, root)
	require.NoError(t, err)
	require.Len(t, res.TrainIndices, 3)
}

func TestStart_OverridesApplyAfterFile(t *testing.T) {
	opts := newOptions(
		WithEmbeddedConfig([]byte(testConfig)),
		WithLogLevel("debug"),
		WithSplitProof(func(c *types.UserSplitProofConfig) {
			scheme := "plonk"
			c.Scheme = &scheme
		}),
	)
	require.NoError(t, loadConfig(opts))

	cfg := opts.GetAppConfig()
	require.Equal(t, "debug", *cfg.Log.Level)
	require.Equal(t, "plonk", *cfg.SplitProof.Scheme)
	require.Equal(t, 16, *cfg.SplitProof.MaxRows)
}

func TestStart_BadConfig(t *testing.T) {
	_, err := Start(context.Background(), WithEmbeddedConfig([]byte("{not json")))
	require.Error(t, err)

	_, err = Start(context.Background(), WithConfigFile("/nonexistent/splitproof.json"))
	require.Error(t, err)

	// 比例无法解析时拒绝启动，不回退默认值
	_, err = Start(context.Background(),
		WithEmbeddedConfig([]byte(`{"storage": {"in_memory": true}, "splitproof": {"ratio": "80-20"}}`)),
		WithDataDir(t.TempDir()),
		WithoutAPI(),
	)
	require.ErrorContains(t, err, "splitproof.ratio")
}
