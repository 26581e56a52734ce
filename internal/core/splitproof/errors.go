// Package splitproof 数据集切分证明的编排层：证明方案、电路工件、证明生成与验证
package splitproof

import (
	"errors"
	"fmt"

	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/core/splitproof/shuffle"
)

// ============================================================================
//                            切分证明错误定义
// ============================================================================

var (
	// ErrMalformedInput 输入格式错误（空行、宽度错误、非规范根、超出行数上限）
	ErrMalformedInput = errors.New("malformed input")

	// ErrWitnessInconsistency 私有行与公开承诺不一致
	ErrWitnessInconsistency = errors.New("witness inconsistency")

	// ErrProvingTimeout 证明超时或调用方取消
	ErrProvingTimeout = errors.New("proving timeout")

	// ErrOverloaded 证明队列已满
	ErrOverloaded = errors.New("prover overloaded")

	// ErrInternalProverFault 证明器内部故障（不自动重试）
	ErrInternalProverFault = errors.New("internal prover fault")

	// ErrBackendUnavailable 证明后端不可用（编译、设置或加载失败）
	ErrBackendUnavailable = errors.New("proving backend unavailable")

	// ErrMalformedProof 证明信封结构错误
	ErrMalformedProof = errors.New("malformed proof")

	// ErrJobNotFound 证明任务不存在
	ErrJobNotFound = errors.New("proof job not found")
)

// ============================================================================
//                               错误包装函数
// ============================================================================

// WrapMalformedInputError 包装输入格式错误
func WrapMalformedInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, reason)
}

// WrapWitnessInconsistencyError 包装见证不一致错误
func WrapWitnessInconsistencyError(shape string, err error) error {
	return fmt.Errorf("%w: shape=%s, cause=%v", ErrWitnessInconsistency, shape, err)
}

// WrapProvingTimeoutError 包装超时错误，保留上下文错误链
func WrapProvingTimeoutError(jobID string, err error) error {
	return fmt.Errorf("%w: job=%s: %w", ErrProvingTimeout, jobID, err)
}

// WrapOverloadedError 包装过载错误
func WrapOverloadedError(depth int) error {
	return fmt.Errorf("%w: queue depth=%d", ErrOverloaded, depth)
}

// WrapInternalProverFaultError 包装证明器内部故障
func WrapInternalProverFaultError(shape string, err error) error {
	return fmt.Errorf("%w: shape=%s, cause=%v", ErrInternalProverFault, shape, err)
}

// WrapBackendUnavailableError 包装后端不可用错误
func WrapBackendUnavailableError(reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrBackendUnavailable, reason)
	}
	return fmt.Errorf("%w: %s, cause=%v", ErrBackendUnavailable, reason, err)
}

// WrapMalformedProofError 包装证明格式错误
func WrapMalformedProofError(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedProof, reason)
}

// WrapJobNotFoundError 包装任务不存在错误
func WrapJobNotFoundError(jobID string) error {
	return fmt.Errorf("%w: job=%s", ErrJobNotFound, jobID)
}

// classifyInputError 将底层参数错误归类为 ErrMalformedInput，两个错误链均保留
func classifyInputError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, shuffle.ErrInvalidParameter) ||
		errors.Is(err, commitment.ErrEmptySequence) ||
		errors.Is(err, commitment.ErrNonCanonicalRoot) {
		return fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return err
}
