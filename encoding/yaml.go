package encoding

import (
	"gopkg.in/yaml.v2"
	"io"
)

// Default YAML encoder for SmileEngine. BinData and uuid values are not given
// special handling here -- yaml.v2 does not expose a type extension mechanism,
// so they serialize through their default representations.
type yamlEncoder struct{}

func (encoder *yamlEncoder) Encode(
	engine ContentEngine, writer io.Writer, content interface{},
) error {
	yamlEncoder := yaml.NewEncoder(writer)
	if err := yamlEncoder.Encode(content); err != nil {
		return err
	}

	return yamlEncoder.Close()
}

func (encoder *yamlEncoder) Decode(
	engine ContentEngine, reader io.Reader, contentReceiver interface{},
) error {
	yamlDecoder := yaml.NewDecoder(reader)
	return yamlDecoder.Decode(contentReceiver)
}
