package accessor

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"

	"github.com/matt-g-everett/ledanim/value"
)

// Default is the process wide cache over the method sets of target types.
var Default = NewCache(ReflectResolver{})

// entry holds either a resolved accessor or the cached failure.
type entry struct {
	acc *Accessor
	err error
}

/*
Cache memoizes accessor resolution per (target type, property, role).

- Readers of existing entries only take the read lock.
- Concurrent first resolutions of one key are collapsed by singleflight, so the
  resolver is asked once and every caller gets the same accessor or failure.
- Entries are installed check-then-insert under the write lock and never replaced.
*/
type Cache struct {
	resolver Resolver
	logger   logr.Logger
	metrics  Metrics

	mu      sync.RWMutex
	entries [2]map[reflect.Type]map[string]*entry
	typeIDs map[reflect.Type]uint64

	group singleflight.Group
}

type Option func(*Cache)

// WithLogger sets the logger for resolution details, all written at V(1).
func WithLogger(logger logr.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithMetrics sets the receiver of cache events.
func WithMetrics(metrics Metrics) Option {
	return func(c *Cache) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

func NewCache(resolver Resolver, opts ...Option) *Cache {
	c := &Cache{
		resolver: resolver,
		logger:   logr.Discard(),
		metrics:  NoopMetrics{},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.entries[Getter] = make(map[reflect.Type]map[string]*entry)
	c.entries[Setter] = make(map[reflect.Type]map[string]*entry)
	c.typeIDs = make(map[reflect.Type]uint64)

	return c
}

// Resolve returns the accessor for property on owner. Setters are searched through the
// variant table of the declared kind; valueType is only consulted for value.Other.
// A failed resolution is cached and reported with ErrNotFound on every later call.
func (c *Cache) Resolve(owner reflect.Type, property string, role Role, declared value.Kind, valueType reflect.Type) (*Accessor, error) {
	if owner == nil {
		return nil, fmt.Errorf("resolve %s %s on nil type: %w", property, role, ErrNotFound)
	}

	if ent, ok := c.get(owner, property, role); ok {
		c.metrics.Hit()
		return ent.acc, ent.err
	}

	c.metrics.Miss()

	res, _, _ := c.group.Do(c.flightKey(owner, property, role), func() (any, error) {
		// installed while we were waiting to get here
		if ent, ok := c.get(owner, property, role); ok {
			return ent, nil
		}

		c.metrics.Lookup()
		return c.install(owner, property, role, c.find(owner, property, role, declared, valueType)), nil
	})

	ent := res.(*entry)
	return ent.acc, ent.err
}

// Len returns the number of cached entries, failures included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	for _, byType := range c.entries {
		for _, byName := range byType {
			n += len(byName)
		}
	}
	return n
}

// Reset drops every cached entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries[Getter])
	clear(c.entries[Setter])
}

func (c *Cache) get(owner reflect.Type, property string, role Role) (*entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ent, ok := c.entries[role][owner][property]
	return ent, ok
}

func (c *Cache) install(owner reflect.Type, property string, role Role, ent *entry) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	byName := c.entries[role][owner]
	if byName == nil {
		byName = make(map[string]*entry)
		c.entries[role][owner] = byName
	}

	if existing, ok := byName[property]; ok {
		return existing
	}

	byName[property] = ent
	return ent
}

func (c *Cache) find(owner reflect.Type, property string, role Role, declared value.Kind, valueType reflect.Type) *entry {
	member := MemberName(role.Prefix(), property)

	if role == Getter {
		if fn, ok := c.resolver.Lookup(owner, member, nil); ok {
			return &entry{acc: newAccessor(owner, property, Getter, fn, value.Invalid)}
		}

		c.metrics.Failure()
		c.logger.V(1).Info("no getter for property", "type", owner.String(), "property", property, "member", member)
		return &entry{err: fmt.Errorf("%s.%s(): %w", owner, member, ErrNotFound)}
	}

	for _, variant := range value.Variants(declared, valueType) {
		if fn, ok := c.resolver.Lookup(owner, member, variant.Type); ok {
			c.logger.V(1).Info("resolved setter", "type", owner.String(), "member", member, "variant", variant.Type.String(), "kind", variant.Kind.String())
			return &entry{acc: newAccessor(owner, property, Setter, fn, variant.Kind)}
		}
	}

	c.metrics.Failure()
	c.logger.V(1).Info("no setter for property", "type", owner.String(), "property", property, "member", member, "kind", declared.String())
	return &entry{err: fmt.Errorf("%s.%s(%s): %w", owner, member, declared, ErrNotFound)}
}

// flightKey identifies a resolution for singleflight. Types are numbered rather than
// named, as distinct types can share a name and package path.
func (c *Cache) flightKey(owner reflect.Type, property string, role Role) string {
	return role.String() + "\x00" + strconv.FormatUint(c.typeID(owner), 10) + "\x00" + property
}

// typeID numbers types in order of first resolution. Ids survive Reset.
func (c *Cache) typeID(t reflect.Type) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.typeIDs[t]
	if !ok {
		id = uint64(len(c.typeIDs)) + 1
		c.typeIDs[t] = id
	}
	return id
}
