package splitproof

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/core/splitproof/shuffle"
	"github.com/weisyn/splitproof/pkg/types"
)

func sampleEnvelope() *Envelope {
	e := &Envelope{
		Version:  EnvelopeVersion,
		SchemeID: 1,
		Curve:    DefaultCurve,
		Shape:    types.Shape{N: 8, K: 6},
		Proof:    []byte{1, 2, 3, 4, 5, 6, 7, 8, 9},
	}
	e.VKHash[0] = 0xaa
	return e
}

func TestEnvelope_RoundTrip(t *testing.T) {
	e := sampleEnvelope()
	parsed, err := ParseEnvelope(e.Marshal())
	require.NoError(t, err)
	require.Equal(t, e, parsed)
}

func TestEnvelope_Truncation(t *testing.T) {
	data := sampleEnvelope().Marshal()
	for i := 0; i < len(data); i++ {
		_, err := ParseEnvelope(data[:i])
		require.ErrorIs(t, err, ErrMalformedProof, "截断到%d字节", i)
	}
	_, err := ParseEnvelope(append(data, 0))
	require.ErrorIs(t, err, ErrMalformedProof)
}

func TestEnvelope_BadHeader(t *testing.T) {
	cases := map[string]func([]byte){
		"magic":   func(b []byte) { b[0] = 'X' },
		"version": func(b []byte) { b[4] = 9 },
		"curve":   func(b []byte) { b[6], b[7] = 0xff, 0xff },
		"n<2":     func(b []byte) { b[8], b[9], b[10], b[11] = 0, 0, 0, 1 },
		"k>=n":    func(b []byte) { b[15] = 8 },
		"k=0":     func(b []byte) { b[15] = 0 },
		"len":     func(b []byte) { b[51]++ },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			data := sampleEnvelope().Marshal()
			mutate(data)
			_, err := ParseEnvelope(data)
			require.ErrorIs(t, err, ErrMalformedProof)
		})
	}
}

func TestEnvelope_RandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		data := make([]byte, rng.Intn(128))
		rng.Read(data)
		if rng.Intn(2) == 0 && len(data) >= 4 {
			copy(data, envelopeMagic[:])
		}
		_, err := ParseEnvelope(data)
		if err != nil {
			require.True(t, errors.Is(err, ErrMalformedProof))
		}
	}
}

func TestPublicOutputs_Codec(t *testing.T) {
	o := &PublicOutputs{TrainIndices: []uint32{3, 0, 2}}
	o.TrainRoot[31] = 1
	o.TestRoot[31] = 2

	data := o.Marshal()
	require.Len(t, data, 64+4+12)

	parsed, err := ParsePublicOutputs(data)
	require.NoError(t, err)
	require.Equal(t, o, parsed)

	_, err = ParsePublicOutputs(data[:len(data)-1])
	require.ErrorIs(t, err, ErrMalformedProof)
	_, err = ParsePublicOutputs(data[:10])
	require.ErrorIs(t, err, ErrMalformedProof)
}

func TestClassifyInputError(t *testing.T) {
	_, err := shuffle.Permute(types.Seed{}, 1)
	wrapped := classifyInputError(err)
	require.ErrorIs(t, wrapped, ErrMalformedInput)
	require.ErrorIs(t, wrapped, shuffle.ErrInvalidParameter)

	_, err = commitment.Commit(nil)
	require.ErrorIs(t, classifyInputError(err), commitment.ErrEmptySequence)
	require.ErrorIs(t, classifyInputError(err), ErrMalformedInput)

	other := errors.New("x")
	require.Equal(t, other, classifyInputError(other))
	require.Nil(t, classifyInputError(nil))
}

func TestErrorCode(t *testing.T) {
	require.Equal(t, "overloaded", ErrorCode(WrapOverloadedError(3)))
	require.Equal(t, "proving_timeout", ErrorCode(WrapProvingTimeoutError("j", errors.New("deadline"))))
	require.Equal(t, "internal", ErrorCode(errors.New("x")))

	rec := &JobRecord{ErrorCode: "witness_inconsistency", Error: "boom"}
	require.ErrorIs(t, rec.Err(), ErrWitnessInconsistency)
}
