// Package types 定义数据集切分证明系统的公共数据类型
//
// 📋 **核心类型**：
//   - RowHash / Seed / MerkleRoot：32字节定长摘要
//   - Permutation / Split：确定性洗牌与训练/测试集划分结果
//   - Ratio：训练集比例策略（证明方与验证方必须一致）
package types

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DigestSize 所有摘要类型的固定字节宽度
const DigestSize = 32

// RowHash 数据集单行的承诺摘要（创建后不可变）
type RowHash [DigestSize]byte

// Seed 公开随机种子，洗牌的唯一随机源
type Seed [DigestSize]byte

// MerkleRoot 有序行摘要序列的承诺根
//
// ⚠️ 编码为 BN254 标量域元素的规范大端表示，>= r 的值视为非法
type MerkleRoot [DigestSize]byte

// ============================================================================
//                              十六进制编解码
// ============================================================================

func decodeDigest(s string) ([DigestSize]byte, error) {
	var out [DigestSize]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return out, fmt.Errorf("invalid hex digest: %w", err)
	}
	if len(raw) != DigestSize {
		return out, fmt.Errorf("invalid digest width: expected %d bytes, got %d", DigestSize, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// ParseRowHash 解析十六进制行摘要（可带0x前缀）
func ParseRowHash(s string) (RowHash, error) {
	d, err := decodeDigest(s)
	return RowHash(d), err
}

// ParseSeed 解析十六进制种子
func ParseSeed(s string) (Seed, error) {
	d, err := decodeDigest(s)
	return Seed(d), err
}

// ParseMerkleRoot 解析十六进制Merkle根（不做域规范性检查）
func ParseMerkleRoot(s string) (MerkleRoot, error) {
	d, err := decodeDigest(s)
	return MerkleRoot(d), err
}

// Hex 返回带0x前缀的十六进制表示
func (h RowHash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// Hex 返回带0x前缀的十六进制表示
func (s Seed) Hex() string { return "0x" + hex.EncodeToString(s[:]) }

// Hex 返回带0x前缀的十六进制表示
func (r MerkleRoot) Hex() string { return "0x" + hex.EncodeToString(r[:]) }

func (h RowHash) String() string    { return h.Hex() }
func (s Seed) String() string       { return s.Hex() }
func (r MerkleRoot) String() string { return r.Hex() }

// MarshalText 实现encoding.TextMarshaler（JSON中以十六进制字符串表示）
func (h RowHash) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// UnmarshalText 实现encoding.TextUnmarshaler
func (h *RowHash) UnmarshalText(b []byte) error {
	v, err := ParseRowHash(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// MarshalText 实现encoding.TextMarshaler
func (s Seed) MarshalText() ([]byte, error) { return []byte(s.Hex()), nil }

// UnmarshalText 实现encoding.TextUnmarshaler
func (s *Seed) UnmarshalText(b []byte) error {
	v, err := ParseSeed(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText 实现encoding.TextMarshaler
func (r MerkleRoot) MarshalText() ([]byte, error) { return []byte(r.Hex()), nil }

// UnmarshalText 实现encoding.TextUnmarshaler
func (r *MerkleRoot) UnmarshalText(b []byte) error {
	v, err := ParseMerkleRoot(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ============================================================================
//                              洗牌与划分
// ============================================================================

// Permutation 原始索引 [0,N) 到洗牌后位置的双射
//
// perm[p] 为洗牌后第 p 个位置上的原始行索引
type Permutation []uint32

// Split 训练/测试集划分
//
// 🎯 不变量：TrainIndices ∪ TestIndices = [0,N)，且交集为空
type Split struct {
	K            int      `json:"k"`
	TrainIndices []uint32 `json:"train_indices"`
	TestIndices  []uint32 `json:"test_indices"`
}

// Ratio 训练集比例策略 Train/Total
type Ratio struct {
	Train uint32 `json:"train"`
	Total uint32 `json:"total"`
}

// DefaultRatio 默认 80/20 划分
var DefaultRatio = Ratio{Train: 80, Total: 100}

// Validate 检查比例满足 0 < Train < Total
func (r Ratio) Validate() error {
	if r.Total == 0 || r.Train == 0 || r.Train >= r.Total {
		return fmt.Errorf("invalid ratio %d/%d: require 0 < train < total", r.Train, r.Total)
	}
	return nil
}

// String 以 "train/test" 形式输出（例如 80/20）
func (r Ratio) String() string {
	return fmt.Sprintf("%d/%d", r.Train, r.Total-r.Train)
}

// ParseRatio 解析 "80/20" 形式的比例
//
// 两部分分别为训练和测试份额，Total = train + test
func ParseRatio(s string) (Ratio, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return Ratio{}, fmt.Errorf("invalid ratio %q: expected train/test", s)
	}
	train, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	test, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 32)
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	r := Ratio{Train: uint32(train), Total: uint32(train + test)}
	if train+test > uint64(^uint32(0)) {
		return Ratio{}, fmt.Errorf("invalid ratio %q: overflow", s)
	}
	return r, r.Validate()
}

// Shape 电路形状：行数 N 与训练集大小 K
type Shape struct {
	N int `json:"n"`
	K int `json:"k"`
}

// Key 电路形状缓存键
func (s Shape) Key() string {
	return fmt.Sprintf("n%d_k%d", s.N, s.K)
}
