package dis

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rewrite(t *testing.T, g *GridSpec) (*GridSpec, string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteDIS(&buf, g))
	text := buf.String()
	again, err := ParseDIS(strings.NewReader(text))
	require.NoError(t, err, text)
	return again, text
}

func TestWriteModflow(t *testing.T) {
	g := parse(t, modflowDIS)
	again, text := rewrite(t, g)
	assert.Equal(t, g, again)
	assert.Contains(t, text, "CONSTANT 100 DELR\n")
	assert.Contains(t, text, "INTERNAL 1.0 (FREE) -1 DELC\n50 75\n")
	assert.Contains(t, text, "3*-20 3*-24\n")
	assert.Contains(t, text, "365 12 1.2 TR\n")
}

func TestWriteCompact(t *testing.T) {
	g := &GridSpec{
		Text: []string{"compact grid"},
		NLay: 2, NRow: 2, NCol: 3,
		DelR: []float64{10, 10, 12.5},
		DelC: []float64{0.1, 0.1},
		Top:  []float64{1, 2, 3, 4, 5, 6},
		Botm: [][]float64{nil, {-1, -2, -3, -4, -5, -6}},
	}
	again, text := rewrite(t, g)
	assert.Equal(t, g, again)
	assert.True(t, strings.HasPrefix(text, "# compact grid\n2 2 3\n2*10 12.5\n2*0.1\n"), text)
	assert.Contains(t, text, "'BOTM' 3 2 2\n")
}

func TestWriteLongArray(t *testing.T) {
	g := &GridSpec{
		NLay: 1, NRow: 1, NCol: 25, NPer: 1,
		DelC:          []float64{1},
		Top:           make([]float64, 25),
		Botm:          [][]float64{make([]float64, 25)},
		StressPeriods: []StressPeriod{{PerLen: 1, NStp: 1, TSMult: 1}},
	}
	for i := range 25 {
		g.DelR = append(g.DelR, float64(i+1))
		g.Botm[0][i] = -1
	}
	again, text := rewrite(t, g)
	assert.Equal(t, g.DelR, again.DelR)
	// ten values to a line
	assert.Contains(t, text, "\n21 22 23 24 25\n")
	assert.Equal(t, []int{0}, again.LayCBD)
}

func TestWriteInvalid(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDIS(&buf, &GridSpec{NLay: 1, NRow: 1, NCol: 2, DelR: []float64{1}, DelC: []float64{1}})
	assert.ErrorIs(t, err, ErrInvalidGrid)
	assert.Zero(t, buf.Len())

	g := &GridSpec{
		NLay: 1, NRow: 1, NCol: 1, NPer: 1,
		DelR: []float64{1}, DelC: []float64{1}, Top: []float64{1},
		StressPeriods: []StressPeriod{{PerLen: 1, NStp: 1, TSMult: 1}},
	}
	err = WriteDIS(&buf, g)
	assert.ErrorIs(t, err, ErrMissingLayer)
}

type errWriter struct{}

var errWrite = errors.New("write failed")

func (errWriter) Write(p []byte) (int, error) {
	return 0, errWrite
}

func TestWriteError(t *testing.T) {
	g := parse(t, modflowDIS)
	err := WriteDIS(errWriter{}, g)
	assert.ErrorIs(t, err, errWrite)
}
