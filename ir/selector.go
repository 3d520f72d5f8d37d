package ir

import (
	"strconv"
	"strings"
)

// Pair is one key=value entry of a selector clause.
type Pair struct {
	Key   string
	Value string
}

// Pairs is an ordered selector mapping. Keys keep the position of their
// first insertion; a later value for the same key replaces the earlier one.
type Pairs []Pair

// Set returns p with key set to value.
func (p Pairs) Set(key, value string) Pairs {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Pair{Key: key, Value: value})
}

// Merge sets every pair of other into p, in order.
func (p Pairs) Merge(other Pairs) Pairs {
	for _, kv := range other {
		p = p.Set(kv.Key, kv.Value)
	}
	return p
}

// Get returns the value stored for key.
func (p Pairs) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Clause renders the pairs as a selector on base, e.g. @e[tag=E,score_x=3].
// No pairs renders the bare selector.
func (p Pairs) Clause(base string) string {
	if len(p) == 0 {
		return "@" + base
	}
	var sb strings.Builder
	sb.WriteString("@")
	sb.WriteString(base)
	sb.WriteByte('[')
	for i, kv := range p {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(kv.Key)
		sb.WriteByte('=')
		sb.WriteString(kv.Value)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Selector is a predicate fragment merged into a selector clause.
type Selector interface {
	Resolve(ctx Context) (Pairs, error)
}

// RangeSel restricts actors to those whose counter lies in a range. Either
// bound may be absent, not both.
type RangeSel struct {
	ref    Ref
	min    int
	max    int
	hasMin bool
	hasMax bool
}

// SelRange builds a range predicate on ref. Bounds are copied.
func SelRange(ref Ref, min, max *int) (RangeSel, error) {
	if ref == nil {
		return RangeSel{}, ErrNilRef
	}
	if min == nil && max == nil {
		return RangeSel{}, ErrNoBounds
	}
	s := RangeSel{ref: ref}
	if min != nil {
		s.min, s.hasMin = *min, true
	}
	if max != nil {
		s.max, s.hasMax = *max, true
	}
	return s, nil
}

// SelEquals matches actors whose counter is exactly value.
func SelEquals(ref Ref, value int) (RangeSel, error) {
	return SelRange(ref, &value, &value)
}

func SelAtLeast(ref Ref, min int) (RangeSel, error) {
	return SelRange(ref, &min, nil)
}

func SelAtMost(ref Ref, max int) (RangeSel, error) {
	return SelRange(ref, nil, &max)
}

func SelBetween(ref Ref, min, max int) (RangeSel, error) {
	return SelRange(ref, &min, &max)
}

func (s RangeSel) Ref() Ref { return s.ref }

// Min returns the lower bound and whether it is set.
func (s RangeSel) Min() (int, bool) { return s.min, s.hasMin }

// Max returns the upper bound and whether it is set.
func (s RangeSel) Max() (int, bool) { return s.max, s.hasMax }

// Resolve yields score_<tok>_min for the lower bound and score_<tok> for the
// upper bound, in that order.
func (s RangeSel) Resolve(ctx Context) (Pairs, error) {
	if s.ref == nil {
		return nil, ErrNilRef
	}
	name, err := s.ref.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	out := make(Pairs, 0, 2)
	if s.hasMin {
		out = append(out, Pair{Key: "score_" + name + "_min", Value: strconv.Itoa(s.min)})
	}
	if s.hasMax {
		out = append(out, Pair{Key: "score_" + name, Value: strconv.Itoa(s.max)})
	}
	return out, nil
}
