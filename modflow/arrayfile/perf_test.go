package arrayfile

import (
	"bytes"
	"testing"

	"github.com/batchatco/go-native-modflow/modflow/api"
)

func benchFile(b *testing.B, p api.Precision, steps, nrow, ncol int) []byte {
	b.Helper()
	vals := make([]float64, nrow*ncol)
	for i := range vals {
		vals[i] = float64(i) / 4
	}
	var recs []api.Record
	for k := 1; k <= steps; k++ {
		a, err := api.NewFloat64Array(nrow, ncol, vals)
		if err != nil {
			b.Fatal(err)
		}
		h := api.ArrayHeader{KStp: k, KPer: 1, PerTim: float64(k), TotIm: float64(k),
			Text: "            HEAD", NCol: ncol, NRow: nrow, ILay: 1}
		recs = append(recs, api.Record{Header: h, Array: a})
	}
	var buf bytes.Buffer
	if err := WriteArrays(&buf, recs, p); err != nil {
		b.Fatal(err)
	}
	return buf.Bytes()
}

func benchmarkRead(b *testing.B, p api.Precision) {
	file := benchFile(b, p, 20, 200, 300)
	b.SetBytes(int64(len(file)))
	b.ResetTimer()
	for range b.N {
		rd := ReadArrays(bytes.NewReader(file))
		n := 0
		for rd.Next() {
			n++
		}
		if rd.Err() != nil || n != 20 {
			b.Fatal(n, rd.Err())
		}
	}
}

func BenchmarkReadSingle(b *testing.B) {
	benchmarkRead(b, api.Single)
}

func BenchmarkReadDouble(b *testing.B) {
	benchmarkRead(b, api.Double)
}
