package provider

import (
	"reflect"
	"sync"
	"github.com/illuscio-dev/smiletools-go/mimetype"
	"github.com/illuscio-dev/smiletools-go/smile"
)

/*
MapperProvider locates mappers configured by the hosting framework for specific
value types and mimetypes. Hosts with their own configuration mechanism (a
dependency injection container, per-route settings, etc) implement this
interface and hand it to SmileProvider.SetProviders.
*/
type MapperProvider interface {
	// MapperFor returns the mapper bound to the given value type and mimetype,
	// or nil when no mapper has been bound for the pair. Implementations must be
	// safe for concurrent calls.
	MapperFor(valueType reflect.Type, mimeType mimetype.MimeType) *smile.Mapper
}

// Key for registry bindings.
type registryKey struct {
	valueType reflect.Type
	mimeType  mimetype.MimeType
}

/*
MapperRegistry is the default MapperProvider implementation: a concurrency-safe
mapping of (value type, mimetype) pairs to mappers.

Bindings registered under mimetype.UNKNOWN act as wildcards: they are not
consulted by MapperFor for a concrete mimetype, but resolvers query the wildcard
explicitly as a second lookup when the exact pair misses.
*/
type MapperRegistry struct {
	lock    sync.RWMutex
	mappers map[registryKey]*smile.Mapper
}

// Register binds mapper to the (valueType, mimeType) pair, replacing any
// previous binding. Pass mimetype.UNKNOWN to register a wildcard binding for
// valueType.
func (registry *MapperRegistry) Register(
	valueType reflect.Type, mimeType mimetype.MimeType, mapper *smile.Mapper,
) {
	registry.lock.Lock()
	defer registry.lock.Unlock()

	registry.mappers[registryKey{valueType, mimeType}] = mapper
}

// MapperFor implements MapperProvider.
func (registry *MapperRegistry) MapperFor(
	valueType reflect.Type, mimeType mimetype.MimeType,
) *smile.Mapper {
	registry.lock.RLock()
	defer registry.lock.RUnlock()

	return registry.mappers[registryKey{valueType, mimeType}]
}

// NewMapperRegistry creates an empty MapperRegistry.
func NewMapperRegistry() *MapperRegistry {
	return &MapperRegistry{
		mappers: make(map[registryKey]*smile.Mapper),
	}
}
