package encoding_test

//revive:disable:import-shadowing reason: Disabled for assert := assert.New(), which is
// the preferred method of using multiple asserts in a test.

import (
	"bou.ke/monkey"
	"bytes"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/xerrors"
	"io"
	"reflect"
	"testing"
	"github.com/illuscio-dev/smiletools-go/encoding"
	"github.com/illuscio-dev/smiletools-go/mimetype"
	"github.com/illuscio-dev/smiletools-go/provider"
	"github.com/illuscio-dev/smiletools-go/smile"
	"github.com/illuscio-dev/smiletools-go/smiletypes"
)

type Name struct {
	First string
	Last  string
}

func createEngine(test *testing.T, allowSniff bool) *encoding.SmileEngine {
	engine, err := encoding.NewContentEngine(allowSniff, nil)
	if err != nil {
		test.Fatal(err)
	}
	return engine
}

func TestCreateEngineDefault(test *testing.T) {
	assert := assert.New(test)

	engine, err := encoding.NewContentEngine(false, nil)

	assert.Nil(err)
	assert.NotNil(engine)

	assert.NotNil(engine.SmileProvider())
	assert.NotNil(engine.JSONHandle())
	assert.NotNil(engine.BSONRegistry())

	// Test that all the defaults registered appropriately.
	assert.Equal(true, engine.Handles(mimetype.SMILE))
	assert.Equal(true, engine.Handles(mimetype.JSON))
	assert.Equal(true, engine.Handles(mimetype.BSON))
	assert.Equal(true, engine.Handles(mimetype.YAML))
	assert.Equal(true, engine.Handles(mimetype.TEXT))

	assert.Equal(false, engine.Handles(mimetype.MimeType("text/csv")))

	assert.Equal(false, engine.SniffType())
}

// Generic function for round-tripping a basic name object for a given mimeType
func RoundTripName(
	test *testing.T, mimeTypeEncode mimetype.MimeType, mimeTypeDecode mimetype.MimeType,
) *Name {
	engine := createEngine(test, true)

	testName := Name{
		First: "Harry",
		Last:  "Potter",
	}

	buffer := bytes.Buffer{}

	err := engine.Encode(mimeTypeEncode, testName, &buffer)
	if err != nil {
		test.Error(err)
	}

	loaded := Name{}
	err = engine.Decode(mimeTypeDecode, &loaded, &buffer)
	if err != nil {
		test.Error(err)
	}

	assert.Equal(test, testName, loaded)

	return &loaded
}

func TestSmileBasicRoundTrip(test *testing.T) {
	RoundTripName(test, mimetype.SMILE, mimetype.SMILE)
}

func TestJsonBasicRoundTrip(test *testing.T) {
	RoundTripName(test, mimetype.JSON, mimetype.JSON)
}

func TestBsonBasicRoundTrip(test *testing.T) {
	RoundTripName(test, mimetype.BSON, mimetype.BSON)
}

func TestYamlBasicRoundTrip(test *testing.T) {
	RoundTripName(test, mimetype.YAML, mimetype.YAML)
}

func TestSmileExtensionRoundTrip(test *testing.T) {
	assert := assert.New(test)
	engine := createEngine(test, false)

	testUUID, err := uuid.FromString("64c4c442-a4b0-4d92-8873-cd1e4b08ac32")
	if err != nil {
		test.Fatal(err)
	}

	type Record struct {
		ID   uuid.UUID
		Blob smiletypes.BinData
		Raw  primitive.Binary
	}

	record := Record{
		ID:   testUUID,
		Blob: smiletypes.BinData("some binary data"),
		Raw: primitive.Binary{
			Subtype: 0x0,
			Data:    []byte("bson binary data"),
		},
	}

	buffer := bytes.Buffer{}

	if err := engine.Encode(mimetype.SMILE, record, &buffer); err != nil {
		test.Error(err)
	}

	loaded := Record{}
	if err := engine.Decode(mimetype.SMILE, &loaded, &buffer); err != nil {
		test.Error(err)
	}

	assert.Equal(record, loaded)
}

func TestJSONBinDataRoundTrip(test *testing.T) {
	assert := assert.New(test)
	engine := createEngine(test, false)

	type Record struct {
		Blob smiletypes.BinData
	}

	record := Record{Blob: smiletypes.BinData("some binary data")}

	buffer := bytes.Buffer{}

	if err := engine.Encode(mimetype.JSON, record, &buffer); err != nil {
		test.Error(err)
	}

	// Blob data rides as a hex string in json payloads.
	assert.Contains(buffer.String(), "736f6d652062696e6172792064617461"[:16])

	loaded := Record{}
	if err := engine.Decode(mimetype.JSON, &loaded, &buffer); err != nil {
		test.Error(err)
	}

	assert.Equal(record, loaded)
}

func TestSmileEngineHonorsConfiguredMapper(test *testing.T) {
	assert := assert.New(test)

	explicit, err := smile.NewMapper(smile.ProfileDefault)
	if err != nil {
		test.Fatal(err)
	}

	smileProvider := provider.NewSmileProvider(explicit, smile.ProfileDefault)

	engine, err := encoding.NewContentEngine(false, smileProvider)
	if err != nil {
		test.Fatal(err)
	}

	resolved := engine.SmileProvider().ResolveMapper(
		reflect.TypeOf(Name{}), mimetype.SMILE,
	)
	assert.True(explicit == resolved)

	RoundTripEngine := func(subTest *testing.T) {
		testName := Name{First: "Harry", Last: "Potter"}
		buffer := bytes.Buffer{}

		if err := engine.Encode(mimetype.SMILE, testName, &buffer); err != nil {
			subTest.Error(err)
		}

		loaded := Name{}
		if err := engine.Decode(mimetype.SMILE, &loaded, &buffer); err != nil {
			subTest.Error(err)
		}

		assert.Equal(testName, loaded)
	}

	test.Run("Round Trip With Explicit Mapper", RoundTripEngine)
}

func TestSmileEngineHonorsRegistryMapper(test *testing.T) {
	assert := assert.New(test)

	bound, err := smile.NewMapper(smile.ProfileDefault)
	if err != nil {
		test.Fatal(err)
	}

	registry := provider.NewMapperRegistry()
	registry.Register(reflect.TypeOf(Name{}), mimetype.SMILE, bound)

	smileProvider := provider.NewSmileProvider(nil, smile.ProfileDefault)
	smileProvider.SetProviders(registry)

	engine, err := encoding.NewContentEngine(false, smileProvider)
	if err != nil {
		test.Fatal(err)
	}

	testName := Name{First: "Harry", Last: "Potter"}
	buffer := bytes.Buffer{}

	if err := engine.Encode(mimetype.SMILE, testName, &buffer); err != nil {
		test.Error(err)
	}

	loaded := Name{}
	if err := engine.Decode(mimetype.SMILE, &loaded, &buffer); err != nil {
		test.Error(err)
	}

	assert.Equal(testName, loaded)
}

func TestTextRoundTrip(test *testing.T) {
	engine := createEngine(test, false)

	stringPayload := "Test String."
	buffer := bytes.Buffer{}

	err := engine.Encode(mimetype.TEXT, stringPayload, &buffer)
	if err != nil {
		test.Error(err)
	}

	loaded := ""
	err = engine.Decode(mimetype.TEXT, &loaded, &buffer)
	if err != nil {
		test.Error(err)
	}

	assert.Equal(test, stringPayload, loaded)
}

func TestNoDecoderError(test *testing.T) {
	engine := createEngine(test, true)
	buffer := &bytes.Buffer{}
	receiver := make(map[string]interface{})

	err := engine.Decode("text/csv", receiver, buffer)

	assert.EqualError(test, err, "no decoder for text/csv")
}

func TestNoEncoderError(test *testing.T) {
	engine := createEngine(test, true)
	buffer := &bytes.Buffer{}
	data := make(map[string]interface{})

	err := engine.Encode("text/csv", data, buffer)

	assert.EqualError(test, err, "no encoder for text/csv")
}

type PanickyEncoder struct{}

func (encoder *PanickyEncoder) Encode(
	engine encoding.ContentEngine, writer io.Writer, content interface{},
) error {
	panic(xerrors.New("encode panicked"))
}

func (encoder *PanickyEncoder) Decode(
	engine encoding.ContentEngine, reader io.Reader, contentReceiver interface{},
) error {
	panic(xerrors.New("decode panicked"))
}

func TestEncodePanicsError(test *testing.T) {
	engine := createEngine(test, true)
	buffer := &bytes.Buffer{}

	engine.SetEncoder("text/csv", &PanickyEncoder{})

	data := make(map[string]interface{})
	err := engine.Encode("text/csv", data, buffer)

	assert.EqualError(
		test, err, "encode err: panic during encode: encode panicked",
	)
}

func TestDecoderPanicsError(test *testing.T) {
	engine := createEngine(test, true)
	buffer := &bytes.Buffer{}

	engine.SetDecoder("text/csv", &PanickyEncoder{})

	data := make(map[string]interface{})
	err := engine.Decode("text/csv", data, buffer)

	assert.EqualError(
		test, err, "decode err: panic during decode: decode panicked",
	)
}

func TestNoSniffError(test *testing.T) {
	engine := createEngine(test, false)

	buffer := &bytes.Buffer{}
	receiver := make(map[string]interface{})

	err := engine.Decode(mimetype.UNKNOWN, receiver, buffer)
	assert.EqualError(
		test, err, "mimetype is unknown and sniffing is disabled",
	)
}

func TestSniffErrorReadingBytes(test *testing.T) {
	mockReadFrom := func(buffer *bytes.Buffer, reader io.Reader) (int64, error) {
		return 0, xerrors.New("mock reader error")
	}

	defer monkey.UnpatchAll()
	monkey.PatchInstanceMethod(
		reflect.TypeOf(&bytes.Buffer{}),
		"ReadFrom",
		mockReadFrom,
	)
	engine := createEngine(test, true)

	buffer := &bytes.Buffer{}
	receiver := make(map[string]interface{})

	err := engine.Decode(mimetype.UNKNOWN, receiver, buffer)
	assert.EqualError(
		test, err, "error reading contentBytes: mock reader error",
	)
}
