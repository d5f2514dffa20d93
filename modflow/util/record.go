package util

// Record holds decoded field values in layout order.
type Record struct {
	keys   []string
	values map[string]any
}

func NewRecord() *Record {
	return &Record{values: map[string]any{}}
}

// Set adds or replaces a field. New fields go to the end.
func (r *Record) Set(name string, val any) *Record {
	if _, has := r.values[name]; !has {
		r.keys = append(r.keys, name)
	}
	r.values[name] = val
	return r
}

func (r *Record) Get(name string) (val any, has bool) {
	val, has = r.values[name]
	return
}

func (r *Record) Keys() []string {
	return r.keys
}

func (r *Record) Len() int {
	return len(r.keys)
}

// Int returns the named field if it is an integer, else 0.
func (r *Record) Int(name string) int {
	switch v := r.values[name].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}

// Float returns the named field widened to float64, or 0 if it is not a float.
func (r *Record) Float(name string) float64 {
	switch v := r.values[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	}
	return 0
}

func (r *Record) Text(name string) string {
	s, _ := r.values[name].(string)
	return s
}
