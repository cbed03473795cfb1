package provider

import (
	"golang.org/x/xerrors"
	"io"
	"reflect"
	"sync"
	"github.com/illuscio-dev/smiletools-go/mimetype"
	"github.com/illuscio-dev/smiletools-go/smile"
)

/*
SmileProvider binds smile binary content to and from values for a hosting web
framework. The provider itself never encodes anything: it decides which
smile.Mapper a call should use and forwards the work.

Instantiation

Use NewSmileProvider() to create a SmileProvider. The mapper to use can be
configured in multiple ways:

• By explicitly passing the mapper to NewSmileProvider().

• By explicitly setting the mapper through SetMapper().

• By injecting a MapperProvider through SetProviders() that answers per-call
lookups.

• By doing none of the above, in which case a default mapper is constructed on
first use and cached for the life of the provider.

The last option ("do nothing specific") is often good enough; explicit passing
is simple and unambiguous; the MapperProvider route makes sense with dependency
injection frameworks, or when the mapper has to be configured differently for
different value types or media types.

Note that once a mapper has been explicitly configured, MapperProvider lookups
are skipped entirely: explicit configuration always wins over dynamic discovery.

Concurrency

A single SmileProvider is shared by every request-handling goroutine of the
host. All methods are safe for concurrent use; the lazily-created default mapper
is guarded so concurrent first use observes exactly one instance.
*/
type SmileProvider struct {
	// Guards mapper, providers and wildcardRetry.
	lock sync.RWMutex

	// Explicitly configured mapper. Once set it permanently takes precedence
	// over provider lookups and the default.
	mapper *smile.Mapper

	// Host-injected registry for dynamic mapper discovery. May be nil.
	providers MapperProvider

	// Whether provider lookup misses are retried with the wildcard mimetype.
	// Some hosts fail exact-mimetype lookups that a wildcard lookup would
	// satisfy, so the retry defaults to on.
	wildcardRetry bool

	// Profile the default mapper is built with.
	profile smile.AnnotationProfile

	// Lazy-init guard for defaultMapper.
	defaultOnce   sync.Once
	defaultMapper *smile.Mapper
}

// SetMapper explicitly configures the mapper the provider resolves for every
// call from here on.
func (provider *SmileProvider) SetMapper(mapper *smile.Mapper) {
	provider.lock.Lock()
	defer provider.lock.Unlock()

	provider.mapper = mapper
}

// SetProviders injects the host registry used for dynamic mapper discovery.
func (provider *SmileProvider) SetProviders(providers MapperProvider) {
	provider.lock.Lock()
	defer provider.lock.Unlock()

	provider.providers = providers
}

// SetWildcardRetry toggles the wildcard-mimetype retry performed when an exact
// provider lookup misses. Leave enabled unless the host is known to answer
// exact-mimetype lookups correctly.
func (provider *SmileProvider) SetWildcardRetry(enabled bool) {
	provider.lock.Lock()
	defer provider.lock.Unlock()

	provider.wildcardRetry = enabled
}

// Matches reports whether the provider handles content declared as mimeType.
// With no declared type the provider opts out and lets the host decide.
func (provider *SmileProvider) Matches(mimeType mimetype.MimeType) bool {
	return mimetype.IsSmile(mimeType)
}

/*
ResolveMapper returns the mapper to use for a single call. Resolution order,
first hit wins:

1. The explicitly configured mapper (constructor or SetMapper()).

2. The injected MapperProvider, queried with (valueType, mimeType) exactly as
passed in. On a miss the query is repeated with mimetype.UNKNOWN as a wildcard
(see SetWildcardRetry).

3. A default mapper, created on first use and cached for the life of the
provider.

ResolveMapper always returns a usable mapper. valueType is not validated here --
hosts are expected to have weeded out unprocessable types before calling -- it
is only passed through to the MapperProvider as is.
*/
func (provider *SmileProvider) ResolveMapper(
	valueType reflect.Type, mimeType mimetype.MimeType,
) *smile.Mapper {
	provider.lock.RLock()
	mapper := provider.mapper
	providers := provider.providers
	wildcardRetry := provider.wildcardRetry
	provider.lock.RUnlock()

	if mapper != nil {
		return mapper
	}

	if providers != nil {
		if mapper := providers.MapperFor(valueType, mimeType); mapper != nil {
			return mapper
		}
		if wildcardRetry {
			if mapper := providers.MapperFor(valueType, mimetype.UNKNOWN); mapper != nil {
				return mapper
			}
		}
	}

	return provider.getDefaultMapper()
}

// Returns the cached default mapper, creating it on first use.
func (provider *SmileProvider) getDefaultMapper() *smile.Mapper {
	provider.defaultOnce.Do(func() {
		mapper, err := smile.NewMapper(provider.profile)
		if err != nil {
			// The default extension set registers cleanly for every profile; an
			// error here means the codec library rejected a built-in type.
			panic(xerrors.Errorf("error building default mapper: %w", err))
		}
		provider.defaultMapper = mapper
	})

	return provider.defaultMapper
}

// ReadFrom resolves the mapper for the call, builds the read-side endpoint
// config, and decodes the content of reader into contentReceiver. If reader is
// a closer it is closed once decoding finishes.
func (provider *SmileProvider) ReadFrom(
	valueType reflect.Type,
	mimeType mimetype.MimeType,
	annotations Annotations,
	reader io.Reader,
	contentReceiver interface{},
) error {
	if readCloser, ok := reader.(io.ReadCloser); ok {
		defer func() {
			_ = readCloser.Close()
		}()
	}

	mapper := provider.ResolveMapper(valueType, mimeType)
	config := ConfigForReading(mapper, annotations)

	err := config.Mapper().Read(reader, contentReceiver)
	if err != nil {
		return xerrors.Errorf("decode err: %w", err)
	}

	return nil
}

// WriteTo resolves the mapper for the call, builds the write-side endpoint
// config, and encodes content to writer.
func (provider *SmileProvider) WriteTo(
	valueType reflect.Type,
	mimeType mimetype.MimeType,
	annotations Annotations,
	content interface{},
	writer io.Writer,
) error {
	mapper := provider.ResolveMapper(valueType, mimeType)
	config := ConfigForWriting(mapper, annotations)

	err := config.Mapper().Write(writer, content)
	if err != nil {
		return xerrors.Errorf("encode err: %w", err)
	}

	return nil
}

// NewSmileProvider creates a SmileProvider. mapper may be nil, in which case
// mappers are resolved dynamically (see ResolveMapper). profile configures the
// default mapper built when no other configuration is present.
func NewSmileProvider(
	mapper *smile.Mapper, profile smile.AnnotationProfile,
) *SmileProvider {
	return &SmileProvider{
		mapper:        mapper,
		profile:       profile,
		wildcardRetry: true,
	}
}
