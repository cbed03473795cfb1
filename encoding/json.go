package encoding

import (
	"encoding/hex"
	uuid "github.com/satori/go.uuid"
	"github.com/ugorji/go/codec"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/xerrors"
	"io"
	"reflect"
	"github.com/illuscio-dev/smiletools-go/smiletypes"
)

// JSONExtensionOpts holds options For Json Handle extension to add to the handle on
// engine setup.
type JSONExtensionOpts struct {
	ValueType    reflect.Type
	ExtInterface codec.InterfaceExt
}

// defaultJSONExtensions holds all the JSONExtensionOpts added to the JSON handle on
// engine setup.
var defaultJSONExtensions = []*JSONExtensionOpts{
	{
		ValueType:    reflect.TypeOf(smiletypes.BinData(nil)),
		ExtInterface: &jsonExtBinData{},
	},
	{
		ValueType:    reflect.TypeOf(primitive.Binary{}),
		ExtInterface: &jsonExtBsonBinary{},
	},
}

// Hexifies BinData blobs for json transport.
type jsonExtBinData struct{}

func (ext *jsonExtBinData) ConvertExt(value interface{}) interface{} {
	switch valueBin := value.(type) {
	case smiletypes.BinData:
		return hex.EncodeToString(valueBin)
	case *smiletypes.BinData:
		return hex.EncodeToString(*valueBin)
	}

	panic(xerrors.New("bindata extension received non-bindata value"))
}

func (ext *jsonExtBinData) UpdateExt(dest interface{}, value interface{}) {
	valueHex, ok := value.(string)
	if !ok {
		panic(xerrors.New("bindata json payload must be a hex string"))
	}

	data, err := hex.DecodeString(valueHex)
	if err != nil {
		panic(xerrors.Errorf("error decoding bindata hex: %w", err))
	}

	*dest.(*smiletypes.BinData) = data
}

// Converts BSON binary fields to json. Currently supports Binary blobs and UUIDs.
type jsonExtBsonBinary struct{}

func (ext *jsonExtBsonBinary) ConvertExt(value interface{}) interface{} {
	valueBin := value.(*primitive.Binary)
	if valueBin.Subtype == 0x3 {
		valueUUID, err := uuid.FromBytes(valueBin.Data)
		if err != nil {
			panic(xerrors.Errorf("error converting bson uuid: %w", err))
		}
		return valueUUID
	}

	if valueBin.Subtype == 0x0 {
		return smiletypes.BinData(valueBin.Data)
	}

	panic(xerrors.New("unsupported Binary BSON format"))
}

func (ext *jsonExtBsonBinary) UpdateExt(dest interface{}, value interface{}) {
	panic(
		xerrors.New(
			"decoding to bson binary field not supported -- " +
				"use uuid or BinData type as intermediary",
		),
	)
}

// Converts BSON Raw document to json object.
type jsonExtBsonRaw struct {
	bsonRegistry *bsoncodec.Registry
}

func (ext *jsonExtBsonRaw) ConvertExt(value interface{}) interface{} {
	valueRaw := value.(bson.Raw)

	unmarshaled := make(map[string]interface{})

	if len(valueRaw) > 0 {
		err := bson.UnmarshalWithRegistry(
			ext.bsonRegistry, valueRaw, &unmarshaled,
		)
		if err != nil {
			panic(xerrors.Errorf(
				"error while unmarshalling bson for encoding: %w", err,
			))
		}
	}

	return unmarshaled
}

func (ext *jsonExtBsonRaw) UpdateExt(dest interface{}, value interface{}) {
	panic(xerrors.New("decoding to BSON raw field not supported"))
}

// Default JSON encoder for SmileEngine.
type jsonEncoder struct{}

func (encoder *jsonEncoder) Encode(
	engine ContentEngine, writer io.Writer, content interface{},
) error {
	smileEngine := engine.(*SmileEngine)
	jsonEncoder := codec.NewEncoder(writer, smileEngine.jsonHandle)
	return jsonEncoder.Encode(content)
}

func (encoder *jsonEncoder) Decode(
	engine ContentEngine, reader io.Reader, contentReceiver interface{},
) error {
	smileEngine := engine.(*SmileEngine)
	jsonDecoder := codec.NewDecoder(reader, smileEngine.jsonHandle)
	return jsonDecoder.Decode(contentReceiver)
}
