package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weisyn/splitproof/internal/testutil"
)

func TestExampleRows(t *testing.T) {
	rows := ExampleRows(300)
	require.Len(t, rows, 300)
	require.Equal(t, byte(0), rows[0][0])
	require.Equal(t, byte(1), rows[1][0])
	// 257 = 0x0101
	require.Equal(t, []byte{0x01, 0x01, 0, 0}, rows[257][:4])
	for _, b := range rows[299][4:] {
		require.Zero(t, b)
	}
}

func TestReadWriteRows(t *testing.T) {
	rows := testutil.NewTestRows(5)
	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, rows))

	got, err := ReadRows(strings.NewReader("# header\n\n" + buf.String()))
	require.NoError(t, err)
	require.Equal(t, rows, got)
}

func TestReadRows_Invalid(t *testing.T) {
	_, err := ReadRows(strings.NewReader("0x1234\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "第1行")
}
