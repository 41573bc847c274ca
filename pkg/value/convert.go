package value

import "sync"

// Converters answers whether a value of one data type can feed a parameter
// of another. The zero value is an empty registry ready for use.
type Converters struct {
	mu    sync.RWMutex
	pairs map[[2]DataType]struct{}
}

// NewConverters returns an empty registry.
func NewConverters() *Converters {
	return &Converters{pairs: make(map[[2]DataType]struct{})}
}

// DefaultConverters returns a registry with the conversions the runtime
// performs implicitly.
func DefaultConverters() *Converters {
	c := NewConverters()
	c.Register(Int, Number)
	c.Register(Number, Int)
	c.Register(Int, String)
	c.Register(Number, String)
	c.Register(Bool, String)
	c.Register(Enum, String)
	c.Register(Options, String)
	c.Register(Asset, AssetList)
	c.Register(HiddenFile, File)
	return c
}

// Register declares that from converts to to.
func (c *Converters) Register(from, to DataType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pairs == nil {
		c.pairs = make(map[[2]DataType]struct{})
	}
	c.pairs[[2]DataType{from, to}] = struct{}{}
}

// CanConvert reports whether a converter for (from, to) is registered.
func (c *Converters) CanConvert(from, to DataType) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.pairs[[2]DataType{from, to}]
	return ok
}
