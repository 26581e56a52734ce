package splitproof

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/weisyn/splitproof/internal/core/splitproof/circuits"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/splitproof/pkg/types"
)

// ProveRequest 证明请求
type ProveRequest struct {
	Rows         []types.RowHash
	Seed         types.Seed
	OriginalRoot types.MerkleRoot

	// 可选：为空时使用引擎默认值
	Ratio  *types.Ratio
	Scheme string
}

// ProofResult 证明结果
type ProofResult struct {
	JobID         string           `json:"job_id,omitempty"`
	Scheme        string           `json:"scheme"`
	Shape         types.Shape      `json:"shape"`
	Proof         hexutil.Bytes    `json:"proof"`
	OriginalRoot  types.MerkleRoot `json:"original_root"`
	TrainRoot     types.MerkleRoot `json:"train_root"`
	TestRoot      types.MerkleRoot `json:"test_root"`
	TrainIndices  []uint32         `json:"train_indices"`
	PublicOutputs hexutil.Bytes    `json:"public_outputs"`
	VKHash        common.Hash      `json:"vk_hash"`
	ProveDuration time.Duration    `json:"prove_duration"`
}

// Outputs 公开输出结构
func (r *ProofResult) Outputs() *PublicOutputs {
	return &PublicOutputs{
		TrainRoot:    r.TrainRoot,
		TestRoot:     r.TestRoot,
		TrainIndices: r.TrainIndices,
	}
}

// Prover 切分证明生成器
//
// 🎯 **流程**：
//  1. 电路外计算洗牌、划分与承诺，核对原始根
//  2. 构造见证并检查约束可满足
//  3. 调用后端生成证明（不可中断）
//  4. 自验证，封装信封
//
// ⚠️ 后端返回后若上下文已结束，结果丢弃并返回超时
type Prover struct {
	logger     log.Logger
	selfVerify bool
}

// NewProver 创建证明生成器
func NewProver(logger log.Logger, selfVerify bool) *Prover {
	return &Prover{logger: logger, selfVerify: selfVerify}
}

// checkStatement 计算电路外语句，并确认行承诺与声明的原始根一致
func checkStatement(req *ProveRequest, shape types.Shape) (*circuits.Statement, error) {
	stmt, err := circuits.BuildStatement(req.Rows, req.Seed, shape.K)
	if err != nil {
		return nil, classifyInputError(err)
	}
	if stmt.OriginalRoot != req.OriginalRoot {
		return nil, WrapWitnessInconsistencyError(shape.Key(),
			fmt.Errorf("行承诺 %s 与声明的原始根 %s 不一致", stmt.OriginalRoot, req.OriginalRoot))
	}
	return stmt, nil
}

// Prove 对一个工件形状生成切分证明
func (p *Prover) Prove(ctx context.Context, artifact *CircuitArtifact, req *ProveRequest) (*ProofResult, error) {
	shape := artifact.Shape
	if len(req.Rows) != shape.N {
		return nil, WrapMalformedInputError(fmt.Sprintf("行数 %d 与电路形状 %s 不符", len(req.Rows), shape.Key()))
	}
	if err := ctx.Err(); err != nil {
		return nil, WrapProvingTimeoutError(shape.Key(), err)
	}

	// 1. 电路外语句
	stmt, err := checkStatement(req, shape)
	if err != nil {
		return nil, err
	}

	// 2. 见证与可满足性
	fullWitness, err := frontend.NewWitness(circuits.NewAssignment(req.Rows, shape.K, stmt.Public), DefaultCurve.ScalarField())
	if err != nil {
		return nil, WrapInternalProverFaultError(shape.Key(), fmt.Errorf("构造见证失败: %w", err))
	}
	restore := silenceGnark()
	defer restore()
	if err := artifact.CCS.IsSolved(fullWitness); err != nil {
		return nil, WrapWitnessInconsistencyError(shape.Key(), err)
	}

	if err := ctx.Err(); err != nil {
		return nil, WrapProvingTimeoutError(shape.Key(), err)
	}

	// 3. 生成证明
	start := time.Now()
	proof, err := p.runBackend(artifact, fullWitness)
	elapsed := time.Since(start)
	if err != nil {
		return nil, WrapInternalProverFaultError(shape.Key(), err)
	}
	if err := ctx.Err(); err != nil {
		p.logger.Warnf("证明完成但上下文已结束，结果丢弃: shape=%s, 耗时=%v", shape.Key(), elapsed)
		return nil, WrapProvingTimeoutError(shape.Key(), err)
	}

	// 4. 自验证
	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, WrapInternalProverFaultError(shape.Key(), fmt.Errorf("提取公开见证失败: %w", err))
	}
	if p.selfVerify {
		if err := artifact.Scheme.Verify(proof, artifact.VK, publicWitness); err != nil {
			return nil, WrapInternalProverFaultError(shape.Key(), fmt.Errorf("自验证失败: %w", err))
		}
	}

	proofBytes, err := artifact.Scheme.SerializeProof(proof)
	if err != nil {
		return nil, WrapInternalProverFaultError(shape.Key(), err)
	}
	env := &Envelope{
		Version:  EnvelopeVersion,
		SchemeID: artifact.Scheme.SchemeID(),
		Curve:    DefaultCurve,
		Shape:    shape,
		VKHash:   artifact.VKHash,
		Proof:    proofBytes,
	}

	result := &ProofResult{
		Scheme:        artifact.Scheme.SchemeName(),
		Shape:         shape,
		Proof:         env.Marshal(),
		OriginalRoot:  stmt.OriginalRoot,
		TrainRoot:     stmt.TrainRoot,
		TestRoot:      stmt.TestRoot,
		TrainIndices:  stmt.Split.TrainIndices,
		VKHash:        artifact.VKHash,
		ProveDuration: elapsed,
	}
	result.PublicOutputs = result.Outputs().Marshal()

	p.logger.Infof("切分证明生成成功: scheme=%s, shape=%s, 耗时=%v", result.Scheme, shape.Key(), elapsed)
	return result, nil
}

// runBackend 调用证明后端，后端 panic 转为错误
func (p *Prover) runBackend(artifact *CircuitArtifact, fullWitness witness.Witness) (proof Proof, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorf("证明后端panic: %v\n%s", r, debug.Stack())
			proof, err = nil, fmt.Errorf("证明后端panic: %v", r)
		}
	}()
	return artifact.Scheme.Prove(artifact.CCS, artifact.PK, fullWitness)
}
