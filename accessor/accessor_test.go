package accessor

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-g-everett/ledanim/value"
)

type lamp struct {
	brightness float32
	level      int
	ratio      float64
	label      string
}

func (l *lamp) SetBrightness(v float32) { l.brightness = v }
func (l *lamp) GetBrightness() float32  { return l.brightness }

// only a float64 setter, so float declared values fall through to it
func (l *lamp) SetRatio(v float64) { l.ratio = v }
func (l *lamp) GetRatio() float64  { return l.ratio }

// boxed setter
func (l *lamp) SetLevel(v any) { l.level = v.(int) }
func (l *lamp) GetLevel() int  { return l.level }

func (l *lamp) SetLabel(v string) { l.label = v }

func (l *lamp) SetBroken(v int) { panic("broken") }

var lampType = reflect.TypeFor[*lamp]()

func TestMemberName(t *testing.T) {
	assert.Equal(t, "SetAlpha", MemberName("Set", "alpha"))
	assert.Equal(t, "GetTranslationX", MemberName("Get", "translationX"))
	assert.Equal(t, "SetÉclat", MemberName("Set", "éclat"))
	assert.Equal(t, "Get", MemberName("Get", ""))
}

func TestReflectResolver(t *testing.T) {
	r := ReflectResolver{}

	_, ok := r.Lookup(lampType, "SetBrightness", reflect.TypeFor[float32]())
	assert.True(t, ok)

	_, ok = r.Lookup(lampType, "SetBrightness", reflect.TypeFor[float64]())
	assert.False(t, ok)

	_, ok = r.Lookup(lampType, "GetBrightness", nil)
	assert.True(t, ok)

	// setters are not getters
	_, ok = r.Lookup(lampType, "SetLabel", nil)
	assert.False(t, ok)

	_, ok = r.Lookup(lampType, "SetMissing", reflect.TypeFor[int]())
	assert.False(t, ok)
}

func TestAccessorSetConverts(t *testing.T) {
	acc, err := NewCache(ReflectResolver{}).Resolve(lampType, "brightness", Setter, value.Float, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Float, acc.Kind)
	assert.Equal(t, "SetBrightness", acc.Member)

	l := &lamp{}
	require.NoError(t, acc.Set(l, 3))
	assert.Equal(t, float32(3), l.brightness)
}

func TestAccessorInvocationFailures(t *testing.T) {
	cache := NewCache(ReflectResolver{})

	acc, err := cache.Resolve(lampType, "brightness", Setter, value.Float, nil)
	require.NoError(t, err)

	err = acc.Set(&lamp{}, "bright")
	assert.ErrorIs(t, err, ErrInvocation)

	err = acc.Set(struct{}{}, float32(1))
	assert.ErrorIs(t, err, ErrInvocation)

	err = acc.Set(nil, float32(1))
	assert.ErrorIs(t, err, ErrInvocation)

	_, err = acc.Get(&lamp{})
	assert.ErrorIs(t, err, ErrInvocation)

	broken, err := cache.Resolve(lampType, "broken", Setter, value.Int, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, broken.Set(&lamp{}, 1), ErrInvocation)
}

func TestTypedAccessors(t *testing.T) {
	set := NewSetter("label", func(l *lamp, v string) { l.label = v })
	get := NewGetter("label", func(l *lamp) string { return l.label })

	assert.Equal(t, value.Other, set.Kind)
	assert.Equal(t, lampType, set.Owner)
	assert.Equal(t, "SetLabel", set.Member)

	l := &lamp{}
	require.NoError(t, set.Set(l, "hello"))

	v, err := get.Get(l)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestFromFunc(t *testing.T) {
	acc, err := FromFunc("level", Getter, func(l *lamp) int { return l.level })
	require.NoError(t, err)
	assert.Equal(t, value.Int, acc.Kind)
	assert.Equal(t, lampType, acc.Owner)

	_, err = FromFunc("level", Setter, func(l *lamp) {})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = FromFunc("level", Getter, 42)
	assert.ErrorIs(t, err, ErrMalformed)
}
