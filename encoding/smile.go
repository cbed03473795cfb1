package encoding

import (
	"io"
	"reflect"
	"github.com/illuscio-dev/smiletools-go/mimetype"
	"github.com/illuscio-dev/smiletools-go/provider"
)

// Default SMILE encoder for SmileEngine. The mapper is resolved per payload
// through the engine's SmileProvider so host-configured mappers are honored.
type smileEncoder struct {
	provider *provider.SmileProvider
}

// Returns the value type to hand the provider for resolution. Pointers are
// unwrapped so the same registry binding serves both sides of a round trip.
func resolveType(content interface{}) reflect.Type {
	valueType := reflect.TypeOf(content)
	for valueType != nil && valueType.Kind() == reflect.Ptr {
		valueType = valueType.Elem()
	}
	return valueType
}

func (encoder *smileEncoder) Encode(
	engine ContentEngine, writer io.Writer, content interface{},
) error {
	mapper := encoder.provider.ResolveMapper(resolveType(content), mimetype.SMILE)
	return mapper.Write(writer, content)
}

func (encoder *smileEncoder) Decode(
	engine ContentEngine, reader io.Reader, contentReceiver interface{},
) error {
	mapper := encoder.provider.ResolveMapper(
		resolveType(contentReceiver), mimetype.SMILE,
	)
	return mapper.Read(reader, contentReceiver)
}
