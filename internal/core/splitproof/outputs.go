package splitproof

import (
	"encoding/binary"
	"fmt"

	"github.com/weisyn/splitproof/pkg/types"
)

// PublicOutputs 证明的公开输出
//
// 📋 编码：train_root(32) ‖ test_root(32) ‖ u32be count ‖ count × u32be index
type PublicOutputs struct {
	TrainRoot    types.MerkleRoot `json:"train_root"`
	TestRoot     types.MerkleRoot `json:"test_root"`
	TrainIndices []uint32         `json:"train_indices"`
}

// Marshal 编码公开输出
func (o *PublicOutputs) Marshal() []byte {
	buf := make([]byte, 0, 2*types.DigestSize+4+4*len(o.TrainIndices))
	buf = append(buf, o.TrainRoot[:]...)
	buf = append(buf, o.TestRoot[:]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(o.TrainIndices)))
	for _, idx := range o.TrainIndices {
		buf = binary.BigEndian.AppendUint32(buf, idx)
	}
	return buf
}

// ParsePublicOutputs 解析公开输出
func ParsePublicOutputs(data []byte) (*PublicOutputs, error) {
	const head = 2*types.DigestSize + 4
	if len(data) < head {
		return nil, WrapMalformedProofError(fmt.Sprintf("公开输出长度不足: %d", len(data)))
	}
	o := &PublicOutputs{}
	copy(o.TrainRoot[:], data[:types.DigestSize])
	copy(o.TestRoot[:], data[types.DigestSize:2*types.DigestSize])

	count := binary.BigEndian.Uint32(data[2*types.DigestSize : head])
	if uint64(len(data)-head) != 4*uint64(count) {
		return nil, WrapMalformedProofError(fmt.Sprintf("训练索引数量不匹配: count=%d, bytes=%d", count, len(data)-head))
	}
	o.TrainIndices = make([]uint32, count)
	for i := range o.TrainIndices {
		off := head + 4*i
		o.TrainIndices[i] = binary.BigEndian.Uint32(data[off : off+4])
	}
	return o, nil
}
