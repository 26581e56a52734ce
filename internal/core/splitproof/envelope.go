package splitproof

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"

	"github.com/weisyn/splitproof/pkg/types"
)

// ============================================================================
// 证明信封
// ============================================================================
//
// 📋 **布局**（大端）：
//
//	magic "SPLT"(4) | version(1) | scheme(1) | curve(2) | n(4) | k(4) |
//	vk_hash(32) | proof_len(4) | proof(proof_len)
//
// ⚠️ 任何结构错误（长度、魔数、版本、尾随字节）都归为 ErrMalformedProof
//
// ============================================================================

const (
	// EnvelopeVersion 当前信封版本
	EnvelopeVersion byte = 1

	envelopeHeaderSize = 4 + 1 + 1 + 2 + 4 + 4 + 32 + 4

	// maxProofBytes 信封内证明的长度上限
	maxProofBytes = 1 << 20
)

var envelopeMagic = [4]byte{'S', 'P', 'L', 'T'}

// Envelope 带形状与验证密钥绑定的证明
type Envelope struct {
	Version  byte
	SchemeID byte
	Curve    ecc.ID
	Shape    types.Shape
	VKHash   [32]byte
	Proof    []byte
}

// Marshal 编码信封
func (e *Envelope) Marshal() []byte {
	buf := make([]byte, 0, envelopeHeaderSize+len(e.Proof))
	buf = append(buf, envelopeMagic[:]...)
	buf = append(buf, e.Version, e.SchemeID)
	buf = binary.BigEndian.AppendUint16(buf, uint16(e.Curve))
	buf = binary.BigEndian.AppendUint32(buf, uint32(e.Shape.N))
	buf = binary.BigEndian.AppendUint32(buf, uint32(e.Shape.K))
	buf = append(buf, e.VKHash[:]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(e.Proof)))
	return append(buf, e.Proof...)
}

// ParseEnvelope 解析信封
func ParseEnvelope(data []byte) (*Envelope, error) {
	if len(data) < envelopeHeaderSize {
		return nil, WrapMalformedProofError(fmt.Sprintf("信封长度不足: %d", len(data)))
	}
	if !bytes.Equal(data[:4], envelopeMagic[:]) {
		return nil, WrapMalformedProofError("魔数错误")
	}

	e := &Envelope{
		Version:  data[4],
		SchemeID: data[5],
		Curve:    ecc.ID(binary.BigEndian.Uint16(data[6:8])),
	}
	if e.Version != EnvelopeVersion {
		return nil, WrapMalformedProofError(fmt.Sprintf("不支持的信封版本: %d", e.Version))
	}
	if e.Curve != DefaultCurve {
		return nil, WrapMalformedProofError(fmt.Sprintf("不支持的曲线: %d", uint16(e.Curve)))
	}

	n := binary.BigEndian.Uint32(data[8:12])
	k := binary.BigEndian.Uint32(data[12:16])
	if n < 2 || k < 1 || k >= n {
		return nil, WrapMalformedProofError(fmt.Sprintf("形状非法: n=%d, k=%d", n, k))
	}
	e.Shape = types.Shape{N: int(n), K: int(k)}

	copy(e.VKHash[:], data[16:48])

	proofLen := binary.BigEndian.Uint32(data[48:52])
	if proofLen == 0 || proofLen > maxProofBytes {
		return nil, WrapMalformedProofError(fmt.Sprintf("证明长度非法: %d", proofLen))
	}
	if uint64(len(data)-envelopeHeaderSize) != uint64(proofLen) {
		return nil, WrapMalformedProofError(fmt.Sprintf("证明长度不匹配: 声明%d, 实际%d", proofLen, len(data)-envelopeHeaderSize))
	}
	e.Proof = append([]byte(nil), data[envelopeHeaderSize:]...)
	return e, nil
}
