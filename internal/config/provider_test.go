package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/weisyn/splitproof/pkg/types"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

// TestProvider_Defaults 未提供用户配置时使用默认值
func TestProvider_Defaults(t *testing.T) {
	p := NewProvider(nil)

	require.Equal(t, "splitproof", p.GetAppName())
	require.Equal(t, "info", p.GetLog().Level)
	require.True(t, p.GetEvent().Enabled)

	sp := p.GetSplitProof()
	require.Equal(t, "groth16", sp.Scheme)
	require.Equal(t, types.DefaultRatio, sp.Ratio)
	require.True(t, sp.SelfVerify)
	require.Greater(t, sp.MaxConcurrent, 0)

	require.Contains(t, p.GetBadger().Path, "badger")
	require.True(t, p.GetAPI().HTTP.Enabled)
}

// TestProvider_UserOverrides 用户配置覆盖默认值，包括显式零值
func TestProvider_UserOverrides(t *testing.T) {
	p := NewProvider(&types.AppConfig{
		AppName: strPtr("splitd"),
		Log:     &types.UserLogConfig{Level: strPtr("debug"), FilePath: strPtr("/tmp/sp.log")},
		Storage: &types.UserStorageConfig{DataPath: strPtr("/var/lib/sp"), InMemory: boolPtr(true)},
		Cache:   &types.UserCacheConfig{Enabled: boolPtr(false), LifeWindowSeconds: intPtr(60)},
		Event:   &types.UserEventConfig{Enabled: boolPtr(false)},
		SplitProof: &types.UserSplitProofConfig{
			Scheme:          strPtr("plonk"),
			Ratio:           strPtr("70/30"),
			MaxQueueDepth:   intPtr(0),
			ProofTimeoutSec: intPtr(5),
			SelfVerify:      boolPtr(false),
		},
		API: &types.UserAPIConfig{HTTPPort: intPtr(9000)},
	})

	require.Equal(t, "splitd", p.GetAppName())

	logOpts := p.GetLog()
	require.Equal(t, "debug", logOpts.Level)
	require.Equal(t, "/tmp/sp.log", logOpts.FilePath)
	require.False(t, logOpts.ToConsole)

	require.Equal(t, "/var/lib/sp", p.GetBadger().Path)
	require.True(t, p.GetBadger().InMemory)

	require.False(t, p.GetMemory().Enabled)
	require.Equal(t, time.Minute, p.GetMemory().DefaultTTL)
	require.False(t, p.GetEvent().Enabled)

	sp := p.GetSplitProof()
	require.Equal(t, "plonk", sp.Scheme)
	require.Equal(t, types.Ratio{Train: 70, Total: 100}, sp.Ratio)
	require.Equal(t, 0, sp.MaxQueueDepth)
	require.Equal(t, 5*time.Second, sp.ProofTimeout)
	require.False(t, sp.SelfVerify)

	require.Equal(t, 9000, p.GetAPI().HTTP.Port)
}

type stubAppOptions struct{ cfg *types.AppConfig }

func (s stubAppOptions) GetAppConfig() *types.AppConfig { return s.cfg }

// TestProvideConfigServices_InvalidRatio 非法比例在构造配置服务时报错
func TestProvideConfigServices_InvalidRatio(t *testing.T) {
	for _, ratio := range []string{"100/0", "abc", "0/5"} {
		_, err := ProvideConfigServices(ConfigParams{AppOptions: stubAppOptions{cfg: &types.AppConfig{
			SplitProof: &types.UserSplitProofConfig{Ratio: strPtr(ratio)},
		}}})
		require.Error(t, err, "ratio=%s", ratio)
		require.Contains(t, err.Error(), "splitproof.ratio")
	}

	out, err := ProvideConfigServices(ConfigParams{AppOptions: stubAppOptions{cfg: &types.AppConfig{
		SplitProof: &types.UserSplitProofConfig{Ratio: strPtr("70/30")},
	}}})
	require.NoError(t, err)
	require.Equal(t, types.Ratio{Train: 70, Total: 100}, out.Provider.GetSplitProof().Ratio)

	// 未提供应用配置时使用默认值
	out, err = ProvideConfigServices(ConfigParams{})
	require.NoError(t, err)
	require.Equal(t, types.DefaultRatio, out.Provider.GetSplitProof().Ratio)
}
