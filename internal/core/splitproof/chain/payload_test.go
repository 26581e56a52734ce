package chain

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/splitproof/internal/core/splitproof"
)

func TestEncodeDecode(t *testing.T) {
	outputs := &splitproof.PublicOutputs{TrainIndices: []uint32{5, 1, 7}}
	outputs.TrainRoot[0] = 0x11
	outputs.TestRoot[31] = 0x22
	proof := []byte("SPLT-proof-bytes")

	p, err := Encode(proof, outputs)
	require.NoError(t, err)
	require.Equal(t, crypto.Keccak256Hash(p.Encoded), p.Digest)
	// 头部4个32字节槽 + bytes + 数组
	require.Zero(t, len(p.Encoded)%32)

	gotProof, gotOutputs, err := Decode(p.Encoded)
	require.NoError(t, err)
	require.Equal(t, proof, gotProof)
	require.Equal(t, outputs, gotOutputs)
}

func TestEncode_DigestChangesWithIndices(t *testing.T) {
	a := &splitproof.PublicOutputs{TrainIndices: []uint32{0, 1}}
	b := &splitproof.PublicOutputs{TrainIndices: []uint32{1, 0}}

	pa, err := Encode([]byte{1}, a)
	require.NoError(t, err)
	pb, err := Encode([]byte{1}, b)
	require.NoError(t, err)
	require.NotEqual(t, pa.Digest, pb.Digest)
}

func TestEncode_EmptyProof(t *testing.T) {
	_, err := Encode(nil, &splitproof.PublicOutputs{})
	require.Error(t, err)
}

func TestDecode_Malformed(t *testing.T) {
	_, _, err := Decode([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrMalformedPayload)
}

func TestFromResult(t *testing.T) {
	res := &splitproof.ProofResult{Proof: []byte{9, 9}, TrainIndices: []uint32{2}}
	p, err := FromResult(res, []byte{0xca, 0xfe})
	require.NoError(t, err)
	require.Equal(t, []byte{0xca, 0xfe}, []byte(p.Calldata))
}
