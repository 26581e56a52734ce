package splitproof

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"slices"
	"time"

	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/splitproof/internal/core/splitproof/circuits"
	"github.com/weisyn/splitproof/internal/core/splitproof/shuffle"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/splitproof/pkg/types"
)

// ============================================================================
// 切分证明验证器
// ============================================================================
//
// 🎯 **验证步骤**：
//  1. 解析信封，结构错误立即返回 ErrMalformedProof
//  2. 形状策略：K 必须等于 SplitPoint(N, ratio)，否则拒绝
//  3. 由 (seed, N, K) 重算训练索引及其摘要
//  4. 工件 VK 哈希必须与信封一致，否则拒绝
//  5. 反序列化证明，按公开见证验证
//
// 📋 **返回约定**：
//   - (true, nil)   证明有效
//   - (false, nil)  证明无效（策略不符、VK 不符、密码学验证失败）
//   - (false, err)  请求本身错误或后端不可用
//
// ============================================================================

const verdictKeyPrefix = "verdict:"

// VerifyOption 验证选项
type VerifyOption func(*verifyOptions)

type verifyOptions struct {
	ratio types.Ratio
}

// WithRatio 使用指定比例检查形状策略（默认使用引擎配置）
func WithRatio(r types.Ratio) VerifyOption {
	return func(o *verifyOptions) { o.ratio = r }
}

// Validator 切分证明验证器
type Validator struct {
	logger     log.Logger
	circuits   *CircuitManager
	registry   *ProvingSchemeRegistry
	ratio      types.Ratio
	cache      storage.MemoryStore // 可为nil
	verdictTTL time.Duration
	bus        event.EventBus // 可为nil
}

// NewValidator 创建验证器
func NewValidator(
	logger log.Logger,
	circuitManager *CircuitManager,
	registry *ProvingSchemeRegistry,
	ratio types.Ratio,
	cache storage.MemoryStore,
	verdictTTL time.Duration,
	bus event.EventBus,
) *Validator {
	return &Validator{
		logger:     logger,
		circuits:   circuitManager,
		registry:   registry,
		ratio:      ratio,
		cache:      cache,
		verdictTTL: verdictTTL,
		bus:        bus,
	}
}

// Verify 验证证明，训练索引由 (seed, N, K) 重算
func (v *Validator) Verify(
	ctx context.Context,
	proof []byte,
	originalRoot types.MerkleRoot,
	seed types.Seed,
	trainRoot, testRoot types.MerkleRoot,
	opts ...VerifyOption,
) (bool, error) {
	env, o, err := v.prepare(proof, opts)
	if err != nil {
		return false, err
	}
	indices, ok, err := v.expectedIndices(env.Shape, seed, o.ratio)
	if err != nil || !ok {
		return false, err
	}
	return v.verify(ctx, env, originalRoot, seed, trainRoot, testRoot, indices)
}

// VerifyOutputs 按公开输出编码验证，训练索引取自输出并与重算结果交叉核对
func (v *Validator) VerifyOutputs(
	ctx context.Context,
	proof []byte,
	originalRoot types.MerkleRoot,
	seed types.Seed,
	publicOutputs []byte,
	opts ...VerifyOption,
) (bool, error) {
	env, o, err := v.prepare(proof, opts)
	if err != nil {
		return false, err
	}
	outputs, err := ParsePublicOutputs(publicOutputs)
	if err != nil {
		return false, err
	}
	expected, ok, err := v.expectedIndices(env.Shape, seed, o.ratio)
	if err != nil || !ok {
		return false, err
	}
	if !slices.Equal(expected, outputs.TrainIndices) {
		v.logger.Debugf("训练索引与种子重算结果不一致: shape=%s", env.Shape.Key())
		v.publish(proof, env.Shape, false, false, 0)
		return false, nil
	}
	return v.verify(ctx, env, originalRoot, seed, outputs.TrainRoot, outputs.TestRoot, outputs.TrainIndices)
}

func (v *Validator) prepare(proof []byte, opts []VerifyOption) (*Envelope, *verifyOptions, error) {
	o := &verifyOptions{ratio: v.ratio}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.ratio.Validate(); err != nil {
		return nil, nil, WrapMalformedInputError(err.Error())
	}
	env, err := ParseEnvelope(proof)
	if err != nil {
		return nil, nil, err
	}
	return env, o, nil
}

// expectedIndices 形状策略检查与训练索引重算；策略不符时 ok=false
func (v *Validator) expectedIndices(shape types.Shape, seed types.Seed, ratio types.Ratio) ([]uint32, bool, error) {
	k, err := shuffle.SplitPoint(shape.N, ratio)
	if err != nil {
		return nil, false, classifyInputError(err)
	}
	if k != shape.K {
		v.logger.Debugf("形状策略不符: n=%d, k=%d, 期望k=%d, ratio=%s", shape.N, shape.K, k, ratio)
		return nil, false, nil
	}
	perm, err := shuffle.Permute(seed, shape.N)
	if err != nil {
		return nil, false, classifyInputError(err)
	}
	split, err := shuffle.SplitAt(perm, shape.K)
	if err != nil {
		return nil, false, classifyInputError(err)
	}
	return split.TrainIndices, true, nil
}

func (v *Validator) verify(
	ctx context.Context,
	env *Envelope,
	originalRoot types.MerkleRoot,
	seed types.Seed,
	trainRoot, testRoot types.MerkleRoot,
	trainIndices []uint32,
) (bool, error) {
	start := time.Now()

	pub, err := circuits.NewPublicValues(originalRoot, seed, trainRoot, testRoot, trainIndices)
	if err != nil {
		return false, classifyInputError(err)
	}

	cacheKey := verdictKey(env, originalRoot, seed, trainRoot, testRoot, trainIndices)
	if verdict, ok := v.cachedVerdict(ctx, cacheKey); ok {
		v.publish(env.Proof, env.Shape, verdict, true, time.Since(start))
		return verdict, nil
	}

	scheme, err := v.registry.GetSchemeByID(env.SchemeID)
	if err != nil {
		return false, WrapMalformedProofError(err.Error())
	}
	artifact, err := v.circuits.Lookup(ctx, scheme.SchemeName(), env.Shape)
	if err != nil {
		return false, err
	}
	if artifact.VKHash != env.VKHash {
		v.logger.Debugf("验证密钥哈希不一致: shape=%s", env.Shape.Key())
		v.storeVerdict(ctx, cacheKey, false)
		v.publish(env.Proof, env.Shape, false, false, time.Since(start))
		return false, nil
	}

	proof, err := scheme.DeserializeProof(env.Proof, env.Curve)
	if err != nil {
		return false, WrapMalformedProofError(err.Error())
	}
	publicWitness, err := frontend.NewWitness(circuits.NewPublicAssignment(env.Shape, pub), DefaultCurve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("构造公开见证失败: %w", err)
	}

	restore := silenceGnark()
	err = scheme.Verify(proof, artifact.VK, publicWitness)
	restore()

	verdict := err == nil
	if !verdict {
		v.logger.Debugf("切分证明验证失败: shape=%s, err=%v", env.Shape.Key(), err)
	}
	v.storeVerdict(ctx, cacheKey, verdict)
	v.publish(env.Proof, env.Shape, verdict, false, time.Since(start))
	return verdict, nil
}

func (v *Validator) cachedVerdict(ctx context.Context, key string) (bool, bool) {
	if v.cache == nil {
		return false, false
	}
	val, ok, err := v.cache.Get(ctx, key)
	if err != nil || !ok || len(val) != 1 {
		return false, false
	}
	return val[0] == 1, true
}

func (v *Validator) storeVerdict(ctx context.Context, key string, verdict bool) {
	if v.cache == nil {
		return
	}
	val := []byte{0}
	if verdict {
		val[0] = 1
	}
	if err := v.cache.Set(ctx, key, val, v.verdictTTL); err != nil {
		v.logger.Warnf("写入验证结论缓存失败: %v", err)
	}
}

func (v *Validator) publish(proof []byte, shape types.Shape, accepted, cached bool, d time.Duration) {
	if v.bus == nil {
		return
	}
	sum := sha256.Sum256(proof)
	v.bus.Publish(types.EventTypeProofVerified, types.VerificationEvent{
		ProofDigest: hex.EncodeToString(sum[:8]),
		Shape:       shape,
		Accepted:    accepted,
		Cached:      cached,
		Duration:    d,
	})
}

// verdictKey 以整个信封与全部公开值为键
func verdictKey(env *Envelope, originalRoot types.MerkleRoot, seed types.Seed, trainRoot, testRoot types.MerkleRoot, trainIndices []uint32) string {
	h := sha256.New()
	h.Write(env.Marshal())
	h.Write(originalRoot[:])
	h.Write(seed[:])
	h.Write(trainRoot[:])
	h.Write(testRoot[:])
	var buf [4]byte
	for _, idx := range trainIndices {
		binary.BigEndian.PutUint32(buf[:], idx)
		h.Write(buf[:])
	}
	return verdictKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
