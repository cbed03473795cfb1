package encoding

import (
	uuid "github.com/satori/go.uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"io"
	"reflect"
	"github.com/illuscio-dev/smiletools-go/smiletypes"
)

// BsonCodecOpts holds options for registering new BSON codecs with SmileEngine.
type BsonCodecOpts struct {
	// Type this codec handles encoding / decoding to.
	ValueType reflect.Type

	// Codec to register for this type.
	Codec bsoncodec.ValueCodec
}

var defaultBsonCodecs = []*BsonCodecOpts{
	{
		ValueType: reflect.TypeOf(uuid.UUID{}),
		Codec:     bsonCodecUUID{},
	},
	{
		ValueType: reflect.TypeOf(smiletypes.BinData(nil)),
		Codec:     bsonCodecBinData{},
	},
}

// bsonCodecUUID handles encoding and decoding of UUID to and from bson.
type bsonCodecUUID struct{}

// Encodes uuid value to bson.
func (codec bsonCodecUUID) EncodeValue(
	encodeCTX bsoncodec.EncodeContext,
	valueWriter bsonrw.ValueWriter,
	value reflect.Value,
) error {
	valueUUID, _ := value.Interface().(uuid.UUID)
	return valueWriter.WriteBinaryWithSubtype(valueUUID.Bytes(), 0x3)
}

// Decodes uuid value from bson.
func (codec bsonCodecUUID) DecodeValue(
	decodeCTX bsoncodec.DecodeContext,
	valueReader bsonrw.ValueReader,
	value reflect.Value,
) error {
	bytesUUID, _, err := valueReader.ReadBinary()
	if err != nil {
		return err
	}

	uuidVal, err := uuid.FromBytes(bytesUUID)
	if err != nil {
		return err
	}

	value.Set(reflect.ValueOf(uuidVal))

	return nil
}

// bsonCodecBinData handles encoding and decoding of BinData blobs to and from
// bson binary primitives of subtype 0x0.
type bsonCodecBinData struct{}

func (codec bsonCodecBinData) EncodeValue(
	encodeCTX bsoncodec.EncodeContext,
	valueWriter bsonrw.ValueWriter,
	value reflect.Value,
) error {
	valueBin, _ := value.Interface().(smiletypes.BinData)
	return valueWriter.WriteBinaryWithSubtype(valueBin, 0x0)
}

func (codec bsonCodecBinData) DecodeValue(
	decodeCTX bsoncodec.DecodeContext,
	valueReader bsonrw.ValueReader,
	value reflect.Value,
) error {
	data, _, err := valueReader.ReadBinary()
	if err != nil {
		return err
	}

	value.Set(reflect.ValueOf(smiletypes.BinData(data)))

	return nil
}

// Default BSON encoder for SmileEngine. Encodes a single document per payload.
type bsonEncoder struct{}

func (encoder *bsonEncoder) Encode(
	engine ContentEngine, writer io.Writer, content interface{},
) error {
	smileEngine := engine.(*SmileEngine)

	var bodyBSON bson.Raw

	if incomingRaw, isRaw := content.(*bson.Raw); isRaw {
		bodyBSON = *incomingRaw
	} else {
		marshalled, err := bson.MarshalWithRegistry(
			smileEngine.bsonRegistry, content,
		)
		if err != nil {
			return err
		}
		bodyBSON = marshalled
	}

	_, err := writer.Write(bodyBSON)
	return err
}

func (encoder *bsonEncoder) Decode(
	engine ContentEngine, reader io.Reader, contentReceiver interface{},
) error {
	smileEngine := engine.(*SmileEngine)

	document, err := bson.NewFromIOReader(reader)
	if err != nil {
		return err
	}

	return bson.UnmarshalWithRegistry(
		smileEngine.bsonRegistry, document, contentReceiver,
	)
}
