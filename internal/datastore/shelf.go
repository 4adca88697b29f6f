package datastore

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/lidarcore/internal/artifact"
)

// subKind says how a shelf keys entries below the product id.
type subKind int

const (
	bySingle subKind = iota
	byChannel
	byResolution
)

// shelf is one compartment: product id -> sub key -> value.
type shelf[V any] struct {
	compartment Compartment
	kind        subKind
	items       map[string]map[string]V
	clone       func(V) V
}

func newShelf[V any](c Compartment, kind subKind, clone func(V) V) *shelf[V] {
	return &shelf[V]{compartment: c, kind: kind, items: make(map[string]map[string]V), clone: clone}
}

func (s *shelf[V]) key(product, sub string) Key {
	k := Key{Compartment: s.compartment, Product: product}
	switch s.kind {
	case byChannel:
		k.Channel = sub
	case byResolution:
		r, _ := artifact.ParseResolution(sub)
		k.Resolution = r
	}
	return k
}

func (s *shelf[V]) put(product, sub string, v V) {
	byProduct, ok := s.items[product]
	if !ok {
		byProduct = make(map[string]V)
		s.items[product] = byProduct
	}
	byProduct[sub] = v
}

func (s *shelf[V]) get(product, sub string) (V, error) {
	var zero V
	byProduct, ok := s.items[product]
	if !ok || len(byProduct) == 0 {
		return zero, &NotFoundError{What: fmt.Sprintf("product '%s'", product), Where: string(s.compartment)}
	}
	v, ok := byProduct[sub]
	if !ok {
		return zero, &NotFoundError{What: s.describeSub(sub), Where: Key{Compartment: s.compartment, Product: product}.String()}
	}
	return s.clone(v), nil
}

// list returns copies of every entry of product, ordered by sub key.
func (s *shelf[V]) list(product string) ([]V, error) {
	byProduct, ok := s.items[product]
	if !ok || len(byProduct) == 0 {
		return nil, &NotFoundError{What: fmt.Sprintf("product '%s'", product), Where: string(s.compartment)}
	}
	subs := make([]string, 0, len(byProduct))
	for sub := range byProduct {
		subs = append(subs, sub)
	}
	sort.Strings(subs)
	out := make([]V, 0, len(subs))
	for _, sub := range subs {
		out = append(out, s.clone(byProduct[sub]))
	}
	return out, nil
}

// each visits every entry without copying. The callback must not retain or
// mutate the value.
func (s *shelf[V]) each(fn func(product, sub string, v V)) {
	for product, byProduct := range s.items {
		for sub, v := range byProduct {
			fn(product, sub, v)
		}
	}
}

func (s *shelf[V]) keys() []Key {
	var out []Key
	s.each(func(product, sub string, _ V) {
		out = append(out, s.key(product, sub))
	})
	return out
}

func (s *shelf[V]) describeSub(sub string) string {
	switch s.kind {
	case byChannel:
		return fmt.Sprintf("channel '%s'", sub)
	case byResolution:
		return fmt.Sprintf("resolution '%s'", sub)
	}
	return "entry"
}
