package testutil

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/weisyn/splitproof/pkg/types"
)

// NewTestRows 生成 n 个确定性的行摘要 sha256(le32(i))
func NewTestRows(n int) []types.RowHash {
	rows := make([]types.RowHash, n)
	for i := range rows {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(i))
		rows[i] = sha256.Sum256(buf[:])
	}
	return rows
}

// NewTestSeed 生成所有字节均为 b 的种子
func NewTestSeed(b byte) types.Seed {
	var s types.Seed
	for i := range s {
		s[i] = b
	}
	return s
}
