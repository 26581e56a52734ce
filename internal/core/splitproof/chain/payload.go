// Package chain 构造切分证明的链上提交载荷（只编码，不发送）
package chain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/weisyn/splitproof/internal/core/splitproof"
	"github.com/weisyn/splitproof/pkg/types"
)

// ============================================================================
// 链上提交载荷
// ============================================================================
//
// 📋 **ABI**：(bytes proof, bytes32 trainRoot, bytes32 testRoot, uint32[] trainIndices)
//
// 🎯 Digest 为载荷的 Keccak-256；BN254 证明额外附带 Solidity 调用数据形式
//
// ============================================================================

// ErrMalformedPayload 载荷无法按ABI解码
var ErrMalformedPayload = errors.New("malformed chain payload")

var payloadArgs = mustArguments()

func mustArguments() abi.Arguments {
	bytesType, err := abi.NewType("bytes", "", nil)
	if err != nil {
		panic(err)
	}
	bytes32Type, err := abi.NewType("bytes32", "", nil)
	if err != nil {
		panic(err)
	}
	indicesType, err := abi.NewType("uint32[]", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{
		{Name: "proof", Type: bytesType},
		{Name: "trainRoot", Type: bytes32Type},
		{Name: "testRoot", Type: bytes32Type},
		{Name: "trainIndices", Type: indicesType},
	}
}

// Payload 链上提交载荷
type Payload struct {
	Encoded  hexutil.Bytes `json:"payload"`
	Digest   common.Hash   `json:"digest"`
	Calldata hexutil.Bytes `json:"solidity_proof,omitempty"`
}

// Encode 编码证明信封与公开输出
func Encode(proof []byte, outputs *splitproof.PublicOutputs) (*Payload, error) {
	if len(proof) == 0 {
		return nil, fmt.Errorf("证明为空")
	}
	indices := outputs.TrainIndices
	if indices == nil {
		indices = []uint32{}
	}
	encoded, err := payloadArgs.Pack(proof, [32]byte(outputs.TrainRoot), [32]byte(outputs.TestRoot), indices)
	if err != nil {
		return nil, fmt.Errorf("ABI编码失败: %w", err)
	}
	return &Payload{
		Encoded: encoded,
		Digest:  crypto.Keccak256Hash(encoded),
	}, nil
}

// FromResult 由证明结果构造载荷，calldata 可为nil
func FromResult(res *splitproof.ProofResult, calldata []byte) (*Payload, error) {
	p, err := Encode(res.Proof, res.Outputs())
	if err != nil {
		return nil, err
	}
	p.Calldata = calldata
	return p, nil
}

// Decode 解码载荷
func Decode(data []byte) (proof []byte, outputs *splitproof.PublicOutputs, err error) {
	values, err := payloadArgs.Unpack(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(values) != 4 {
		return nil, nil, fmt.Errorf("%w: 字段数 %d", ErrMalformedPayload, len(values))
	}

	proof, ok := values[0].([]byte)
	if !ok {
		return nil, nil, fmt.Errorf("%w: proof 类型错误", ErrMalformedPayload)
	}
	trainRoot, ok := values[1].([32]byte)
	if !ok {
		return nil, nil, fmt.Errorf("%w: trainRoot 类型错误", ErrMalformedPayload)
	}
	testRoot, ok := values[2].([32]byte)
	if !ok {
		return nil, nil, fmt.Errorf("%w: testRoot 类型错误", ErrMalformedPayload)
	}
	indices, ok := values[3].([]uint32)
	if !ok {
		return nil, nil, fmt.Errorf("%w: trainIndices 类型错误", ErrMalformedPayload)
	}
	return proof, &splitproof.PublicOutputs{
		TrainRoot:    types.MerkleRoot(trainRoot),
		TestRoot:     types.MerkleRoot(testRoot),
		TrainIndices: indices,
	}, nil
}
