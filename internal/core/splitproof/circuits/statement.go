package circuits

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/core/splitproof/shuffle"
	"github.com/weisyn/splitproof/pkg/types"
)

// PublicValues 电路公开输入的域元素取值
type PublicValues struct {
	TrainRoot        fr.Element
	TestRoot         fr.Element
	TrainIndexDigest fr.Element
	OriginalRoot     fr.Element
	SeedHi           fr.Element
	SeedLo           fr.Element
}

// NewPublicValues 从字节形式的公开值构造公开输入
//
// 根必须是规范域元素编码；训练索引用于计算索引摘要
func NewPublicValues(originalRoot types.MerkleRoot, seed types.Seed, trainRoot, testRoot types.MerkleRoot, trainIndices []uint32) (PublicValues, error) {
	var pv PublicValues
	var err error
	if pv.OriginalRoot, err = commitment.RootToElement(originalRoot); err != nil {
		return pv, fmt.Errorf("original_root: %w", err)
	}
	if pv.TrainRoot, err = commitment.RootToElement(trainRoot); err != nil {
		return pv, fmt.Errorf("train_root: %w", err)
	}
	if pv.TestRoot, err = commitment.RootToElement(testRoot); err != nil {
		return pv, fmt.Errorf("test_root: %w", err)
	}
	pv.SeedHi, pv.SeedLo = commitment.Limbs(seed)
	pv.TrainIndexDigest = commitment.IndexDigest(trainIndices)
	return pv, nil
}

// Statement 证明语句在电路外的完整计算结果
type Statement struct {
	Shape        types.Shape
	Seed         types.Seed
	OriginalRoot types.MerkleRoot
	TrainRoot    types.MerkleRoot
	TestRoot     types.MerkleRoot
	Permutation  types.Permutation
	Split        *types.Split
	Public       PublicValues
}

// BuildStatement 对行摘要执行洗牌、划分与承诺，得到证明语句
func BuildStatement(rows []types.RowHash, seed types.Seed, k int) (*Statement, error) {
	n := len(rows)
	perm, err := shuffle.Permute(seed, n)
	if err != nil {
		return nil, err
	}
	split, err := shuffle.SplitAt(perm, k)
	if err != nil {
		return nil, err
	}

	leaves := commitment.LeafDigests(rows)
	shuffled, err := shuffle.Apply(perm, leaves)
	if err != nil {
		return nil, err
	}

	original, err := commitment.CommitLeaves(leaves)
	if err != nil {
		return nil, err
	}
	train, err := commitment.CommitLeaves(shuffled[:k])
	if err != nil {
		return nil, err
	}
	test, err := commitment.CommitLeaves(shuffled[k:])
	if err != nil {
		return nil, err
	}

	seedHi, seedLo := commitment.Limbs(seed)
	return &Statement{
		Shape:        types.Shape{N: n, K: k},
		Seed:         seed,
		OriginalRoot: commitment.ElementToRoot(original),
		TrainRoot:    commitment.ElementToRoot(train),
		TestRoot:     commitment.ElementToRoot(test),
		Permutation:  perm,
		Split:        split,
		Public: PublicValues{
			TrainRoot:        train,
			TestRoot:         test,
			TrainIndexDigest: commitment.IndexDigest(split.TrainIndices),
			OriginalRoot:     original,
			SeedHi:           seedHi,
			SeedLo:           seedLo,
		},
	}, nil
}

// NewAssignment 构造完整见证赋值（私有行摘要 + 公开值）
func NewAssignment(rows []types.RowHash, k int, pub PublicValues) *SplitCircuit {
	a := NewSplitCircuit(len(rows), k)
	for i, row := range rows {
		hi, lo := commitment.Limbs(row)
		a.RowHi[i] = toBig(hi)
		a.RowLo[i] = toBig(lo)
	}
	a.assignPublic(pub)
	return a
}

// NewPublicAssignment 构造仅含公开值的赋值（私有部分置零）
func NewPublicAssignment(shape types.Shape, pub PublicValues) *SplitCircuit {
	a := NewSplitCircuit(shape.N, shape.K)
	for i := 0; i < shape.N; i++ {
		a.RowHi[i] = 0
		a.RowLo[i] = 0
	}
	a.assignPublic(pub)
	return a
}

func (c *SplitCircuit) assignPublic(pub PublicValues) {
	c.TrainRoot = toBig(pub.TrainRoot)
	c.TestRoot = toBig(pub.TestRoot)
	c.TrainIndexDigest = toBig(pub.TrainIndexDigest)
	c.OriginalRoot = toBig(pub.OriginalRoot)
	c.SeedHi = toBig(pub.SeedHi)
	c.SeedLo = toBig(pub.SeedLo)
}

// toBig 域元素转为见证可接受的 *big.Int
func toBig(e fr.Element) *big.Int {
	return e.BigInt(new(big.Int))
}

var _ frontend.Circuit = (*SplitCircuit)(nil)
