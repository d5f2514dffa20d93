package internal

import (
	"errors"
	"io"
	"testing"

	"github.com/batchatco/go-native-modflow/modflow/api"
)

func countTo(n int, end error) func() (api.Record, error) {
	i := 0
	return func() (api.Record, error) {
		if i == n {
			return api.Record{}, end
		}
		i++
		return api.Record{Header: api.ArrayHeader{KStp: i, KPer: 1}}, nil
	}
}

func TestProducerExhausted(t *testing.T) {
	p := NewProducer(countTo(3, io.EOF))
	recs, err := Collect(p)
	if err != nil {
		t.Error(err)
		return
	}
	if len(recs) != 3 || p.Count() != 3 {
		t.Error("wrong count", len(recs), p.Count())
		return
	}
	for i, rec := range recs {
		if rec.Header.KStp != i+1 {
			t.Error("wrong kstp", i, rec.Header.KStp)
		}
	}
	if p.State() != api.Exhausted {
		t.Error("state", p.State())
	}
	// stays exhausted
	if p.Next() {
		t.Error("Next after exhaustion")
	}
}

func TestProducerFailed(t *testing.T) {
	bad := errors.New("bad")
	p := NewProducer(countTo(1, bad))
	if !p.Next() {
		t.Error("first record missing")
		return
	}
	if p.Next() {
		t.Error("second record should fail")
		return
	}
	if p.State() != api.Failed || !errors.Is(p.Err(), bad) {
		t.Error("got", p.State(), p.Err())
	}
	// stays failed
	if p.Next() || !errors.Is(p.Err(), bad) {
		t.Error("Next after failure", p.Err())
	}
}
