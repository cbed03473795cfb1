package provider

import (
	"github.com/illuscio-dev/smiletools-go/smile"
)

// Annotations carries per-call metadata the hosting framework attaches to the
// endpoint being read or written (parsed struct tags, route options, header
// directives). The resolver passes annotations through untouched.
type Annotations map[string]string

/*
EndpointConfig bundles the mapper resolved for a call with the annotations of
the endpoint it will serve. Configs are built fresh per call through
ConfigForReading / ConfigForWriting and are immutable afterwards.
*/
type EndpointConfig struct {
	mapper      *smile.Mapper
	annotations Annotations
	forWriting  bool
}

// Mapper returns the mapper resolved for this call.
func (config *EndpointConfig) Mapper() *smile.Mapper {
	return config.mapper
}

// Annotations returns the per-call annotation metadata. The returned map is
// shared, not copied -- treat it as read-only.
func (config *EndpointConfig) Annotations() Annotations {
	return config.annotations
}

// ForWriting reports whether the config was built for the write side of a call.
func (config *EndpointConfig) ForWriting() bool {
	return config.forWriting
}

// ConfigForReading bundles mapper and annotations into a config for the read
// (request body) side of a call.
func ConfigForReading(
	mapper *smile.Mapper, annotations Annotations,
) *EndpointConfig {
	return &EndpointConfig{
		mapper:      mapper,
		annotations: annotations,
	}
}

// ConfigForWriting bundles mapper and annotations into a config for the write
// (response body) side of a call.
func ConfigForWriting(
	mapper *smile.Mapper, annotations Annotations,
) *EndpointConfig {
	return &EndpointConfig{
		mapper:      mapper,
		annotations: annotations,
		forWriting:  true,
	}
}
