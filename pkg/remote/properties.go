package remote

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/wait"
)

// Properties is the live property view of one remote object. Every read
// and write is a fresh round trip; nothing is cached on this side, so two
// reads may disagree when the application changed in between.
type Properties struct {
	object *ObjectBase
}

// All reads every property in one round trip.
func (p *Properties) All(ctx context.Context) (map[string]any, error) {
	return p.object.Send(ctx, "object_properties", nil)
}

// Get reads one property. Asking for a property the object does not have
// is a NotFoundError listing what it does have.
func (p *Properties) Get(ctx context.Context, name string) (any, error) {
	all, err := p.All(ctx)
	if err != nil {
		return nil, err
	}
	v, ok := all[name]
	if !ok {
		return nil, &domain.NotFoundError{
			Entity:     "property",
			Value:      name,
			Location:   p.object.Path,
			Candidates: sortedKeys(all),
		}
	}
	return v, nil
}

// Has reports whether the object currently exposes the property.
func (p *Properties) Has(ctx context.Context, name string) (bool, error) {
	all, err := p.All(ctx)
	if err != nil {
		return false, err
	}
	_, ok := all[name]
	return ok, nil
}

// Set writes one property.
func (p *Properties) Set(ctx context.Context, name string, value any) error {
	return p.SetMany(ctx, map[string]any{name: value})
}

// SetMany writes several properties in one round trip.
func (p *Properties) SetMany(ctx context.Context, props map[string]any) error {
	_, err := p.object.Send(ctx, "object_set_properties", map[string]any{
		"properties": props,
	})
	return err
}

// WaitFor polls the properties until every expected entry matches,
// returning false when timeout elapses first. A remote failure aborts the
// poll and is returned as-is.
func (p *Properties) WaitFor(ctx context.Context, expected map[string]any, timeout, interval time.Duration) (bool, error) {
	return wait.ForFunc(func() (bool, error) {
		all, err := p.All(ctx)
		if err != nil {
			return false, err
		}
		for name, want := range expected {
			got, ok := all[name]
			if !ok || !valuesEqual(got, want) {
				return false, nil
			}
		}
		return true, nil
	}, timeout, interval)
}

// valuesEqual compares a reply value against an expected one, bridging the
// numeric representations JSON decoding produces.
func valuesEqual(got, want any) bool {
	if reflect.DeepEqual(got, want) {
		return true
	}
	gf, gok := toFloat(got)
	wf, wok := toFloat(want)
	return gok && wok && gf == wf
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := strconv.ParseFloat(n.String(), 64)
		return f, err == nil
	}
	return 0, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys
}
