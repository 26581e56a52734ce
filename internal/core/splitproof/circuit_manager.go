package splitproof

import (
	"context"
	"fmt"
	"time"

	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	spconfig "github.com/weisyn/splitproof/internal/config/splitproof"
	"github.com/weisyn/splitproof/internal/core/splitproof/circuits"
	"github.com/weisyn/splitproof/internal/core/splitproof/shuffle"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/splitproof/pkg/types"
)

// ============================================================================
// 电路工件管理
// ============================================================================
//
// 🎯 **职责**：按 (方案, 形状) 提供编译后的约束系统与密钥
//
// 🏗️ **加载顺序**：
//  1. 内存 LRU
//  2. 持久化存储（badger）
//  3. 编译 + 设置，按配置写回持久化存储
//
// ⚠️ **注意**：
//   - 设置是随机的，同一形状两次设置得到不同 VK；验证方只查已有工件，不自行设置
//   - 同一键的并发加载合并为一次
//
// ============================================================================

const artifactKeyPrefix = "splitproof/artifact/"

// CircuitArtifact 一个形状的电路工件
type CircuitArtifact struct {
	Shape         types.Shape
	Scheme        ProvingScheme
	CCS           constraint.ConstraintSystem
	PK            ProvingKey
	VK            VerifyingKey
	VKHash        [32]byte
	NbConstraints int
}

// CircuitManager 电路工件管理器
type CircuitManager struct {
	logger   log.Logger
	registry *ProvingSchemeRegistry
	store    storage.BadgerStore // 可为nil（不持久化）
	persist  bool
	maxRows  int

	cache *lru.Cache[string, *CircuitArtifact]
	group singleflight.Group
}

// NewCircuitManager 创建电路工件管理器
func NewCircuitManager(
	logger log.Logger,
	registry *ProvingSchemeRegistry,
	store storage.BadgerStore,
	options *spconfig.SplitProofOptions,
) (*CircuitManager, error) {
	size := options.ArtifactCacheSize
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[string, *CircuitArtifact](size)
	if err != nil {
		return nil, fmt.Errorf("创建电路工件缓存失败: %w", err)
	}
	return &CircuitManager{
		logger:   logger,
		registry: registry,
		store:    store,
		persist:  options.PersistArtifacts && store != nil,
		maxRows:  options.MaxRows,
		cache:    cache,
	}, nil
}

// ValidateShape 检查形状是否可编译
func (cm *CircuitManager) ValidateShape(shape types.Shape) error {
	if shape.N < 2 || shape.K < 1 || shape.K >= shape.N {
		return WrapMalformedInputError(fmt.Sprintf("形状非法: n=%d, k=%d", shape.N, shape.K))
	}
	if shape.N > cm.maxRows || uint64(shape.N) > shuffle.MaxRows {
		return WrapMalformedInputError(fmt.Sprintf("行数 %d 超出上限 %d", shape.N, cm.maxRows))
	}
	return nil
}

// Load 获取工件，不存在时编译并设置
func (cm *CircuitManager) Load(ctx context.Context, schemeName string, shape types.Shape) (*CircuitArtifact, error) {
	if err := cm.ValidateShape(shape); err != nil {
		return nil, err
	}
	scheme, err := cm.registry.GetScheme(schemeName)
	if err != nil {
		return nil, WrapBackendUnavailableError("证明方案不可用", err)
	}

	key := artifactKey(schemeName, shape)
	if a, ok := cm.cache.Get(key); ok {
		return a, nil
	}

	v, err, _ := cm.group.Do(key, func() (interface{}, error) {
		if a, ok := cm.cache.Get(key); ok {
			return a, nil
		}
		a, err := cm.loadStored(ctx, scheme, shape, true)
		if err != nil {
			cm.logger.Warnf("读取持久化电路工件失败，重新设置: key=%s, err=%v", key, err)
		}
		if a == nil {
			if a, err = cm.setup(ctx, scheme, shape); err != nil {
				return nil, err
			}
		}
		cm.cache.Add(key, a)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*CircuitArtifact), nil
}

// Lookup 获取已存在的工件（仅需 VK），不触发设置
func (cm *CircuitManager) Lookup(ctx context.Context, schemeName string, shape types.Shape) (*CircuitArtifact, error) {
	scheme, err := cm.registry.GetScheme(schemeName)
	if err != nil {
		return nil, WrapBackendUnavailableError("证明方案不可用", err)
	}
	if a, ok := cm.cache.Get(artifactKey(schemeName, shape)); ok {
		return a, nil
	}
	a, err := cm.loadStored(ctx, scheme, shape, false)
	if err != nil {
		return nil, WrapBackendUnavailableError("读取验证密钥失败", err)
	}
	if a == nil {
		return nil, WrapBackendUnavailableError(fmt.Sprintf("形状 %s 没有可用的验证密钥", shape.Key()), nil)
	}
	return a, nil
}

// Compile 编译指定形状的电路
func (cm *CircuitManager) Compile(scheme ProvingScheme, shape types.Shape) (constraint.ConstraintSystem, error) {
	restore := silenceGnark()
	defer restore()

	ccs, err := frontend.Compile(DefaultCurve.ScalarField(), scheme.GetBuilder(), circuits.NewSplitCircuit(shape.N, shape.K))
	if err != nil {
		return nil, WrapBackendUnavailableError(fmt.Sprintf("编译电路失败: shape=%s", shape.Key()), err)
	}
	return ccs, nil
}

// setup 编译、设置并按配置持久化
func (cm *CircuitManager) setup(ctx context.Context, scheme ProvingScheme, shape types.Shape) (*CircuitArtifact, error) {
	start := time.Now()
	ccs, err := cm.Compile(scheme, shape)
	if err != nil {
		return nil, err
	}

	restore := silenceGnark()
	pk, vk, err := scheme.Setup(ccs)
	restore()
	if err != nil {
		return nil, WrapBackendUnavailableError(fmt.Sprintf("可信设置失败: shape=%s", shape.Key()), err)
	}

	vkBytes, err := scheme.SerializeVerifyingKey(vk)
	if err != nil {
		return nil, WrapBackendUnavailableError("序列化验证密钥失败", err)
	}

	a := &CircuitArtifact{
		Shape:         shape,
		Scheme:        scheme,
		CCS:           ccs,
		PK:            pk,
		VK:            vk,
		VKHash:        crypto.Keccak256Hash(vkBytes),
		NbConstraints: ccs.GetNbConstraints(),
	}
	cm.logger.Infof("电路设置完成: scheme=%s, shape=%s, constraints=%d, 耗时=%v",
		scheme.SchemeName(), shape.Key(), a.NbConstraints, time.Since(start))

	if cm.persist {
		if err := cm.save(ctx, a, vkBytes); err != nil {
			// 持久化失败不影响本进程使用
			cm.logger.Warnf("持久化电路工件失败: shape=%s, err=%v", shape.Key(), err)
		}
	}
	return a, nil
}

// save 分别写入 CCS、PK、VK；VK 最后写入，作为工件完整的标志
func (cm *CircuitManager) save(ctx context.Context, a *CircuitArtifact, vkBytes []byte) error {
	base := artifactKey(a.Scheme.SchemeName(), a.Shape)

	ccsBytes, err := writeToBytes(a.CCS, "约束系统")
	if err != nil {
		return err
	}
	pkBytes, err := a.Scheme.SerializeProvingKey(a.PK)
	if err != nil {
		return err
	}

	if err := cm.store.Set(ctx, []byte(base+"/ccs"), ccsBytes); err != nil {
		return err
	}
	if err := cm.store.Set(ctx, []byte(base+"/pk"), pkBytes); err != nil {
		return err
	}
	return cm.store.Set(ctx, []byte(base+"/vk"), vkBytes)
}

// loadStored 从持久化存储读取工件，不存在时返回 nil, nil
func (cm *CircuitManager) loadStored(ctx context.Context, scheme ProvingScheme, shape types.Shape, full bool) (*CircuitArtifact, error) {
	if cm.store == nil {
		return nil, nil
	}
	base := artifactKey(scheme.SchemeName(), shape)

	vkBytes, err := cm.store.Get(ctx, []byte(base+"/vk"))
	if err != nil || vkBytes == nil {
		return nil, err
	}
	vk, err := scheme.DeserializeVerifyingKey(vkBytes, DefaultCurve)
	if err != nil {
		return nil, err
	}
	a := &CircuitArtifact{
		Shape:  shape,
		Scheme: scheme,
		VK:     vk,
		VKHash: crypto.Keccak256Hash(vkBytes),
	}
	if !full {
		return a, nil
	}

	ccsBytes, err := cm.store.Get(ctx, []byte(base+"/ccs"))
	if err != nil || ccsBytes == nil {
		return nil, fmt.Errorf("约束系统缺失: %v", err)
	}
	ccs := scheme.NewConstraintSystem(DefaultCurve)
	if err := readFromBytes(ccs, ccsBytes, "约束系统"); err != nil {
		return nil, err
	}
	pkBytes, err := cm.store.Get(ctx, []byte(base+"/pk"))
	if err != nil || pkBytes == nil {
		return nil, fmt.Errorf("证明密钥缺失: %v", err)
	}
	if a.PK, err = scheme.DeserializeProvingKey(pkBytes, DefaultCurve); err != nil {
		return nil, err
	}
	a.CCS = ccs
	a.NbConstraints = ccs.GetNbConstraints()

	cm.logger.Infof("从持久化存储加载电路工件: scheme=%s, shape=%s", scheme.SchemeName(), shape.Key())
	return a, nil
}

// Purge 清除内存缓存
func (cm *CircuitManager) Purge() {
	cm.cache.Purge()
}

func artifactKey(schemeName string, shape types.Shape) string {
	return artifactKeyPrefix + schemeName + "/" + shape.Key()
}
