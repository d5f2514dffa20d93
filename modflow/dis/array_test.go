package dis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readArray(t *testing.T, text string, nrow, ncol int, kind ArrayKind, opts ...Option) Array {
	t.Helper()
	arr, err := ReadArray(strings.NewReader(text), nrow, ncol, kind, opts...)
	require.NoError(t, err)
	assert.Equal(t, kind, arr.Kind)
	assert.Equal(t, nrow, arr.NRow)
	assert.Equal(t, ncol, arr.NCol)
	return arr
}

func TestReadIntegerArray(t *testing.T) {
	tests := []struct {
		name string
		text string
		nrow int
		ncol int
		want []int
		lbl  string
	}{
		{"fixed width", "INTERNAL 1 (12I2) -1 IBOUND\n 1 1 1 1 1 1 0 0 0-1-1-1\n", 2, 6,
			[]int{1, 1, 1, 1, 1, 1, 0, 0, 0, -1, -1, -1}, "IBOUND"},
		{"constant", "CONSTANT 1\n", 2, 3, []int{1, 1, 1, 1, 1, 1}, ""},
		{"free", "INTERNAL 1 (FREE) 3\n1 0 -1\n3*2\n", 2, 3, []int{1, 0, -1, 2, 2, 2}, ""},
		{"multiplier", "INTERNAL 3 (FREE) 3 # zones\n1 2\n", 1, 2, []int{3, 6}, "zones"},
		{"zero multiplier", "INTERNAL 0 (FREE) 3\n1 2\n", 1, 2, []int{1, 2}, ""},
		{"fixed constant", fixedRecord(0, "5", "", "", ""), 1, 2, []int{5, 5}, ""},
		{"fixed inline", fixedRecord(11, "", "(2I3)", "1", "") + "\n  4 -4\n", 1, 2, []int{4, -4}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr := readArray(t, tt.text, tt.nrow, tt.ncol, Integer, WithUnit(11))
			assert.Equal(t, tt.want, arr.Ints)
			assert.Nil(t, arr.Reals)
			assert.Equal(t, tt.lbl, arr.Text)
		})
	}
}

func TestReadRealArray(t *testing.T) {
	arr := readArray(t, "INTERNAL 0.5 (FREE) 3 DELR\n2 4\n", 1, 2, Real)
	assert.Equal(t, []float64{1, 2}, arr.Reals)
	assert.Nil(t, arr.Ints)
	assert.Equal(t, "DELR", arr.Text)

	arr = readArray(t, "OPEN/CLOSE top.dat 1.0 (FREE) 3\n", 1, 3, Real,
		WithResolver(MapResolver{Files: map[string][]byte{"top.dat": []byte("1.5 2*2.5D0\n")}}))
	assert.Equal(t, []float64{1.5, 2.5, 2.5}, arr.Reals)
}

func TestReadArrayErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind ArrayKind
	}{
		{"real constant", "CONSTANT 1.5\n", Integer},
		{"real multiplier", "INTERNAL 2.0 (FREE) 3\n1 2\n", Integer},
		{"real value", "INTERNAL 1 (FREE) 3\n1 2.5\n", Integer},
		{"binary", "EXTERNAL 40 1 (BINARY) 3\n", Integer},
		{"huge repeat", "INTERNAL 1 (FREE) 3\n9223372036854775807*1\n", Integer},
		{"short", "INTERNAL 1.0 (FREE) 3\n1\n", Real},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadArray(strings.NewReader(tt.text), 1, 2, tt.kind)
			assert.ErrorIs(t, err, ErrGridParse)
		})
	}

	_, err := ReadArray(strings.NewReader("CONSTANT 1\n"), 2000000000, 2000000000, Real)
	assert.ErrorIs(t, err, ErrInvalidGrid)
	_, err = ReadArray(strings.NewReader("CONSTANT 1\n"), 1, 1, ArrayKind(0))
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestArrayKindString(t *testing.T) {
	assert.Equal(t, "real", Real.String())
	assert.Equal(t, "integer", Integer.String())
	assert.Equal(t, "unknown", ArrayKind(9).String())
}
