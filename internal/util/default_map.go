package util

// DefaultMap lazily creates missing values with factory on Get.
type DefaultMap[K comparable, V any] struct {
	internal map[K]V
	factory  func(K) V
}

// NewDefaultMap returns an empty map. A nil factory makes Get fall back to the zero value.
func NewDefaultMap[K comparable, V any](factory func(K) V) *DefaultMap[K, V] {
	return &DefaultMap[K, V]{
		internal: make(map[K]V),
		factory:  factory,
	}
}

func (d *DefaultMap[K, V]) Get(key K) V {
	if val, ok := d.internal[key]; ok {
		return val
	}
	var val V
	if d.factory != nil {
		val = d.factory(key)
	}
	d.internal[key] = val
	return val
}

func (d *DefaultMap[K, V]) Peek(key K) (V, bool) {
	val, ok := d.internal[key]
	return val, ok
}

func (d *DefaultMap[K, V]) Set(key K, value V) {
	d.internal[key] = value
}

func (d *DefaultMap[K, V]) Delete(key K) {
	delete(d.internal, key)
}

func (d *DefaultMap[K, V]) Len() int {
	return len(d.internal)
}

func (d *DefaultMap[K, V]) Values() []V {
	values := make([]V, 0, len(d.internal))
	for _, v := range d.internal {
		values = append(values, v)
	}
	return values
}
