package accessor

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-g-everett/ledanim/value"
)

// countingResolver records every lookup and slows them down to widen race windows.
type countingResolver struct {
	calls atomic.Int64
	delay time.Duration
}

func (r *countingResolver) Lookup(owner reflect.Type, member string, param reflect.Type) (reflect.Value, bool) {
	r.calls.Add(1)
	time.Sleep(r.delay)
	return ReflectResolver{}.Lookup(owner, member, param)
}

type countingMetrics struct {
	hits, misses, lookups, failures atomic.Int64
}

func (m *countingMetrics) Hit()     { m.hits.Add(1) }
func (m *countingMetrics) Miss()    { m.misses.Add(1) }
func (m *countingMetrics) Lookup()  { m.lookups.Add(1) }
func (m *countingMetrics) Failure() { m.failures.Add(1) }

func TestCacheVariantFallback(t *testing.T) {
	tests := []struct {
		name     string
		property string
		declared value.Kind
		wantKind value.Kind
	}{
		{"exact float", "brightness", value.Float, value.Float},
		{"float widens to double setter", "ratio", value.Float, value.Double},
		{"int narrows to float setter", "brightness", value.Int, value.Float},
		{"int accepts boxed setter", "level", value.Int, value.Int},
		{"float accepts boxed setter", "level", value.Float, value.Float},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewCache(ReflectResolver{})
			acc, err := cache.Resolve(lampType, tt.property, Setter, tt.declared, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, acc.Kind)
		})
	}
}

func TestCacheOtherKind(t *testing.T) {
	cache := NewCache(ReflectResolver{})

	acc, err := cache.Resolve(lampType, "label", Setter, value.Other, reflect.TypeFor[string]())
	require.NoError(t, err)
	assert.Equal(t, value.Other, acc.Kind)

	_, err = cache.Resolve(lampType, "brightness", Setter, value.Other, reflect.TypeFor[string]())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheFailureIsCached(t *testing.T) {
	resolver := &countingResolver{}
	metrics := &countingMetrics{}
	cache := NewCache(resolver, WithMetrics(metrics))

	_, err := cache.Resolve(lampType, "missing", Setter, value.Float, nil)
	require.ErrorIs(t, err, ErrNotFound)
	calls := resolver.calls.Load()
	assert.Equal(t, int64(6), calls, "every float variant is tried once")

	for range 3 {
		_, err = cache.Resolve(lampType, "missing", Setter, value.Float, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	}

	assert.Equal(t, calls, resolver.calls.Load())
	assert.Equal(t, int64(1), metrics.lookups.Load())
	assert.Equal(t, int64(1), metrics.failures.Load())
	assert.Equal(t, int64(3), metrics.hits.Load())
}

func TestCacheRolesAndTypesAreSeparate(t *testing.T) {
	type other struct{ lamp }
	cache := NewCache(ReflectResolver{})

	get, err := cache.Resolve(lampType, "brightness", Getter, value.Invalid, nil)
	require.NoError(t, err)
	assert.Equal(t, Getter, get.Role)

	set, err := cache.Resolve(lampType, "brightness", Setter, value.Float, nil)
	require.NoError(t, err)
	assert.Equal(t, Setter, set.Role)

	_, err = cache.Resolve(reflect.TypeFor[other](), "brightness", Setter, value.Float, nil)
	assert.ErrorIs(t, err, ErrNotFound, "value receiver has no pointer methods")

	assert.Equal(t, 3, cache.Len())

	cache.Reset()
	assert.Equal(t, 0, cache.Len())
}

func TestCacheConcurrentFirstResolution(t *testing.T) {
	for _, property := range []string{"brightness", "missing"} {
		t.Run(property, func(t *testing.T) {
			resolver := &countingResolver{delay: 5 * time.Millisecond}
			metrics := &countingMetrics{}
			cache := NewCache(resolver, WithMetrics(metrics))

			const n = 64
			results := make([]*Accessor, n)
			errs := make([]error, n)

			var start, wg sync.WaitGroup
			start.Add(1)
			for i := range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					start.Wait()
					results[i], errs[i] = cache.Resolve(lampType, property, Getter, value.Invalid, nil)
				}()
			}
			start.Done()
			wg.Wait()

			assert.Equal(t, int64(1), resolver.calls.Load())
			assert.Equal(t, int64(1), metrics.lookups.Load())

			for i := range n {
				assert.Equal(t, errs[0], errs[i])
				if errs[0] == nil {
					assert.Same(t, results[0], results[i])
				} else {
					assert.Nil(t, results[i])
				}
			}
		})
	}
}

func TestCacheResolveNilType(t *testing.T) {
	_, err := NewCache(ReflectResolver{}).Resolve(nil, "brightness", Setter, value.Float, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry(t *testing.T) {
	type knob struct{ pos float64 }
	knobType := reflect.TypeFor[*knob]()

	registry := NewRegistry()
	RegisterSetter(registry, "position", func(k *knob, v float64) { k.pos = v })
	RegisterSetter(registry, "position", func(k *knob, v int) { k.pos = float64(v) * 100 })
	RegisterGetter(registry, "position", func(k *knob) float64 { return k.pos })

	assert.ErrorIs(t, registry.Register("position", Getter, "nope"), ErrMalformed)

	cache := NewCache(Resolvers{ReflectResolver{}, registry})

	// int declared: the int variant wins over the float64 one
	acc, err := cache.Resolve(knobType, "position", Setter, value.Int, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int, acc.Kind)

	k := &knob{}
	require.NoError(t, acc.Set(k, 2))
	assert.Equal(t, 200.0, k.pos)

	get, err := cache.Resolve(knobType, "position", Getter, value.Invalid, nil)
	require.NoError(t, err)
	v, err := get.Get(k)
	require.NoError(t, err)
	assert.Equal(t, 200.0, v)
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewPrometheusMetrics(reg)
	require.NoError(t, err)

	cache := NewCache(ReflectResolver{}, WithMetrics(metrics))
	_, _ = cache.Resolve(lampType, "brightness", Setter, value.Float, nil)
	_, _ = cache.Resolve(lampType, "brightness", Setter, value.Float, nil)
	_, _ = cache.Resolve(lampType, "missing", Setter, value.Float, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.hits))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.misses))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.lookups))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures))

	_, err = NewPrometheusMetrics(reg)
	assert.Error(t, err, "counters are already registered")
}

type dial struct {
	level float64
}

func (d *dial) SetLevel(v float64) { d.level = v }

// Both types are named widget in this package; only the first can set a level.
func levelledWidgetType() reflect.Type {
	type widget struct {
		dial
	}
	return reflect.TypeFor[*widget]()
}

func plainWidgetType() reflect.Type {
	type widget struct {
		name string
	}
	return reflect.TypeFor[*widget]()
}

func TestCacheSameNamedTypesResolveConcurrently(t *testing.T) {
	levelled, plain := levelledWidgetType(), plainWidgetType()
	require.NotEqual(t, levelled, plain)
	require.Equal(t, levelled.String(), plain.String())

	for range 5 {
		cache := NewCache(&countingResolver{delay: 20 * time.Millisecond})

		const n = 16
		var start, wg sync.WaitGroup
		start.Add(1)
		levelledErrs := make([]error, n)
		plainErrs := make([]error, n)
		for i := range n {
			wg.Add(2)
			go func() {
				defer wg.Done()
				start.Wait()
				_, levelledErrs[i] = cache.Resolve(levelled, "level", Setter, value.Double, nil)
			}()
			go func() {
				defer wg.Done()
				start.Wait()
				_, plainErrs[i] = cache.Resolve(plain, "level", Setter, value.Double, nil)
			}()
		}
		start.Done()
		wg.Wait()

		for i := range n {
			assert.NoError(t, levelledErrs[i])
			assert.ErrorIs(t, plainErrs[i], ErrNotFound)
		}

		acc, err := cache.Resolve(levelled, "level", Setter, value.Double, nil)
		require.NoError(t, err)
		assert.Equal(t, levelled, acc.Owner)
	}
}

func TestCacheLogsFailuresAtDebug(t *testing.T) {
	for _, verbosity := range []int{0, 1} {
		var lines []string
		logger := funcr.New(func(prefix, args string) {
			lines = append(lines, args)
		}, funcr.Options{Verbosity: verbosity})

		cache := NewCache(ReflectResolver{}, WithLogger(logger))
		_, err := cache.Resolve(lampType, "missing", Setter, value.Int, nil)
		require.ErrorIs(t, err, ErrNotFound)

		if verbosity == 0 {
			assert.Empty(t, lines)
		} else {
			require.Len(t, lines, 1)
			assert.True(t, strings.Contains(lines[0], "no setter for property"), lines[0])
		}
	}
}
