package smile

import (
	"github.com/ugorji/go/codec"
	"golang.org/x/xerrors"
	"io"
)

/*
AnnotationProfile selects which struct tags a Mapper honors when mapping field
names onto the wire. Profiles replace per-deployment Mapper subclassing: pick the
profile at construction and every value the Mapper touches is treated the same
way.
*/
type AnnotationProfile int

const (
	// ProfileDefault honors the `smile` and `codec` struct tags.
	ProfileDefault AnnotationProfile = iota

	// ProfileInterop additionally honors `json` and `bson` struct tags, for types
	// shared with the json / bson encoders of a content engine.
	ProfileInterop
)

// Struct tag keys honored by the profile, in lookup order.
func (profile AnnotationProfile) tagKeys() []string {
	if profile == ProfileInterop {
		return []string{"smile", "codec", "json", "bson"}
	}
	return []string{"smile", "codec"}
}

/*
Mapper reads and writes values to / from the smile binary wire format. The actual
encoding work is delegated to the codec library's binary handle
(https://godoc.org/github.com/ugorji/go/codec) -- Mapper owns which handle is
used and how it is configured, not the encoding rules themselves.

Mappers are safe for concurrent use once constructed. Extension registration is
not synchronized and should happen before the Mapper is shared.

Default Extensions

A new Mapper ships with binary extensions for the following types:

• UUIDs from "github.com/satori/go.uuid", written as their 16 raw bytes.

• smiletypes.BinData blobs, written verbatim.

• BSON primitive.Binary values, written as a subtype byte followed by the data.

Additional extensions can be registered through AddExtensions() by passing a
slice of ExtensionOpts objects.
*/
type Mapper struct {
	// Binary handle used for encoding / decoding.
	handle *codec.BincHandle
	// Profile the handle was built with.
	profile AnnotationProfile
}

// Handle returns the internal codec handle used by the mapper, for advanced
// configuration not covered by ExtensionOpts.
func (mapper *Mapper) Handle() *codec.BincHandle {
	return mapper.handle
}

// Profile returns the annotation profile the mapper was constructed with.
func (mapper *Mapper) Profile() AnnotationProfile {
	return mapper.profile
}

// AddExtensions registers binary extensions with the mapper's handle.
func (mapper *Mapper) AddExtensions(extensions []*ExtensionOpts) error {
	for _, extOpts := range extensions {
		err := mapper.handle.SetBytesExt(
			extOpts.ValueType, extOpts.Tag, extOpts.Ext,
		)
		if err != nil {
			return xerrors.Errorf("error adding extension to mapper: %w", err)
		}
	}
	return nil
}

// Write encodes content to writer as smile binary data.
func (mapper *Mapper) Write(writer io.Writer, content interface{}) error {
	encoder := codec.NewEncoder(writer, mapper.handle)
	return encoder.Encode(content)
}

// Read decodes smile binary data from reader into contentReceiver.
func (mapper *Mapper) Read(reader io.Reader, contentReceiver interface{}) error {
	decoder := codec.NewDecoder(reader, mapper.handle)
	return decoder.Decode(contentReceiver)
}

// NewMapper creates a Mapper with the default extensions registered and struct
// tag handling set by profile.
func NewMapper(profile AnnotationProfile) (*Mapper, error) {
	handle := &codec.BincHandle{}
	handle.TypeInfos = codec.NewTypeInfos(profile.tagKeys())

	mapper := &Mapper{
		handle:  handle,
		profile: profile,
	}

	if err := mapper.AddExtensions(defaultExtensions); err != nil {
		return nil, xerrors.Errorf(
			"error adding default extensions to mapper: %w", err,
		)
	}

	return mapper, nil
}
