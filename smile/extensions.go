package smile

import (
	uuid "github.com/satori/go.uuid"
	"github.com/ugorji/go/codec"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/xerrors"
	"reflect"
	"github.com/illuscio-dev/smiletools-go/smiletypes"
)

// ExtensionOpts holds options for registering a binary extension with a Mapper.
type ExtensionOpts struct {
	// Type this extension handles encoding / decoding to.
	ValueType reflect.Type

	// Wire tag the extension's payloads are written under. Tags must be unique
	// per handle; tags 1 through 3 are used by the default extensions.
	Tag uint64

	// Extension to register for this type.
	Ext codec.BytesExt
}

// defaultExtensions holds all the ExtensionOpts registered on a new Mapper.
var defaultExtensions = []*ExtensionOpts{
	{
		ValueType: reflect.TypeOf(uuid.UUID{}),
		Tag:       1,
		Ext:       &bytesExtUUID{},
	},
	{
		ValueType: reflect.TypeOf(smiletypes.BinData(nil)),
		Tag:       2,
		Ext:       &bytesExtBinData{},
	},
	{
		ValueType: reflect.TypeOf(primitive.Binary{}),
		Tag:       3,
		Ext:       &bytesExtBsonBinary{},
	},
}

// Writes UUIDs as their 16 raw bytes.
type bytesExtUUID struct{}

func (ext *bytesExtUUID) WriteExt(value interface{}) []byte {
	switch valueUUID := value.(type) {
	case uuid.UUID:
		return valueUUID.Bytes()
	case *uuid.UUID:
		return valueUUID.Bytes()
	}

	panic(xerrors.New("uuid extension received non-uuid value"))
}

func (ext *bytesExtUUID) ReadExt(dest interface{}, source []byte) {
	valueUUID, err := uuid.FromBytes(source)
	if err != nil {
		panic(xerrors.Errorf("error reading uuid bytes: %w", err))
	}

	*dest.(*uuid.UUID) = valueUUID
}

// Writes BinData blobs verbatim.
type bytesExtBinData struct{}

func (ext *bytesExtBinData) WriteExt(value interface{}) []byte {
	switch valueBin := value.(type) {
	case smiletypes.BinData:
		return valueBin
	case *smiletypes.BinData:
		return *valueBin
	}

	panic(xerrors.New("bindata extension received non-bindata value"))
}

func (ext *bytesExtBinData) ReadExt(dest interface{}, source []byte) {
	receiver := dest.(*smiletypes.BinData)

	data := make([]byte, len(source))
	copy(data, source)

	*receiver = data
}

// Writes BSON Binary primitives as a single subtype byte followed by the data,
// so bson-sourced documents survive a smile round-trip without re-mapping.
type bytesExtBsonBinary struct{}

func (ext *bytesExtBsonBinary) WriteExt(value interface{}) []byte {
	var valueBin primitive.Binary

	switch incoming := value.(type) {
	case primitive.Binary:
		valueBin = incoming
	case *primitive.Binary:
		valueBin = *incoming
	default:
		panic(xerrors.New("bson binary extension received non-binary value"))
	}

	payload := make([]byte, 0, len(valueBin.Data)+1)
	payload = append(payload, valueBin.Subtype)
	payload = append(payload, valueBin.Data...)

	return payload
}

func (ext *bytesExtBsonBinary) ReadExt(dest interface{}, source []byte) {
	if len(source) == 0 {
		panic(xerrors.New("bson binary payload missing subtype byte"))
	}

	data := make([]byte, len(source)-1)
	copy(data, source[1:])

	*dest.(*primitive.Binary) = primitive.Binary{
		Subtype: source[0],
		Data:    data,
	}
}
