package otel

import "sync"

// cache memoizes values by key.
type cache[K comparable, V any] struct {
	mu   sync.Mutex
	data map[K]V
}

// Lookup returns the value stored for key, or stores and returns the value
// f computes.
func (c *cache[K, V]) Lookup(key K, f func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[K]V)
	}
	if v, ok := c.data[key]; ok {
		return v
	}
	v := f()
	c.data[key] = v
	return v
}

// Range calls f for every value.
func (c *cache[K, V]) Range(f func(V)) {
	c.mu.Lock()
	values := make([]V, 0, len(c.data))
	for _, v := range c.data {
		values = append(values, v)
	}
	c.mu.Unlock()
	for _, v := range values {
		f(v)
	}
}

type valueAndErr[V any] struct {
	value V
	err   error
}

// cacheWithErr memoizes a value and the error computing it returned.
type cacheWithErr[K comparable, V any] struct {
	cache[K, valueAndErr[V]]
}

func (c *cacheWithErr[K, V]) Lookup(key K, f func() (V, error)) (V, error) {
	r := c.cache.Lookup(key, func() valueAndErr[V] {
		v, err := f()
		return valueAndErr[V]{value: v, err: err}
	})
	return r.value, r.err
}

func (c *cacheWithErr[K, V]) HasKey(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
