package core

import (
	"fmt"
	"reflect"
	"sync"
)

// Container holds the objects modules share: settings, logger, the transfer
// service, the HTTP engine. Entries are keyed by type through Put, Get and
// Lookup.
type Container interface {
	Set(key any, val any)
	Get(key any) (any, bool)
}

type container struct {
	entries sync.Map
}

func NewContainer() Container {
	return &container{}
}

func (c *container) Set(key, val any) { c.entries.Store(key, val) }

func (c *container) Get(key any) (any, bool) { return c.entries.Load(key) }

// TypeKey keys a container entry by its Go type.
type TypeKey[T any] struct{}

func Put[T any](c Container, v T) { c.Set(TypeKey[T]{}, v) }

// Lookup returns the entry stored for T, if any.
func Lookup[T any](c Container) (T, bool) {
	raw, ok := c.Get(TypeKey[T]{})
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// Get is Lookup for entries a module cannot run without. It panics when T
// was never Put.
func Get[T any](c Container) T {
	v, ok := Lookup[T](c)
	if !ok {
		panic(fmt.Sprintf("container: no %v registered", reflect.TypeFor[T]()))
	}
	return v
}
