package internal

import (
	"io"

	"github.com/batchatco/go-native-modflow/modflow/api"
)

// Producer turns a decode closure into an api.RecordReader. The closure
// returns io.EOF at a clean end of input; any other error fails the producer.
type Producer struct {
	next  func() (api.Record, error)
	rec   api.Record
	err   error
	state api.State
	count int
}

func NewProducer(next func() (api.Record, error)) *Producer {
	return &Producer{next: next}
}

func (p *Producer) Next() bool {
	if p.state != api.Ready {
		return false
	}
	rec, err := p.next()
	switch {
	case err == io.EOF:
		p.state = api.Exhausted
		p.rec = api.Record{}
		return false
	case err != nil:
		p.state = api.Failed
		p.err = err
		p.rec = api.Record{}
		return false
	}
	p.rec = rec
	p.count++
	return true
}

func (p *Producer) Record() api.Record {
	return p.rec
}

func (p *Producer) Err() error {
	return p.err
}

func (p *Producer) State() api.State {
	return p.state
}

// Count is the number of records produced so far.
func (p *Producer) Count() int {
	return p.count
}

// Collect drains r and returns what it produced.
func Collect(r api.RecordReader) ([]api.Record, error) {
	var recs []api.Record
	for r.Next() {
		recs = append(recs, r.Record())
	}
	return recs, r.Err()
}
