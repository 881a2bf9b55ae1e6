package loader

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// decodeYAML parses one YAML revision file with strict field checking.
func decodeYAML(data []byte, path string) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Path: path, Message: "file is empty"}
		}
		return nil, &LoadError{Path: path, Message: "failed to parse YAML", Err: err}
	}
	if err := validateFile(&f, path); err != nil {
		return nil, err
	}
	return &f, nil
}
