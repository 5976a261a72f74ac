package dump

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnsupportedSchema reports a dump whose schema version this engine does
// not understand.
var ErrUnsupportedSchema = errors.New("unsupported dump schema")

const (
	// ExtTOML — текстовые дампы/фикстуры.
	ExtTOML = ".mu.toml"
	// ExtBinary — компактные бинарные дампы.
	ExtBinary = ".mub"
)

// IsDumpPath reports whether the path looks like a hierarchy dump.
func IsDumpPath(path string) bool {
	return strings.HasSuffix(path, ExtTOML) || strings.HasSuffix(path, ExtBinary)
}

// Load reads and decodes one dump file, dispatching on the extension.
func Load(path string) (*Document, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ExtTOML):
		return DecodeTOML(f)
	case strings.HasSuffix(path, ExtBinary):
		return DecodeBinary(f)
	}
	return nil, fmt.Errorf("unrecognized dump extension %q", filepath.Ext(path))
}

// DecodeTOML decodes a textual dump.
func DecodeTOML(r io.Reader) (*Document, error) {
	var doc Document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode toml dump: %w", err)
	}
	if err := checkSchema(doc.Schema); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DecodeBinary decodes a msgpack dump.
func DecodeBinary(r io.Reader) (*Document, error) {
	var doc Document
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode binary dump: %w", err)
	}
	if err := checkSchema(doc.Schema); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeBinary writes the msgpack encoding of the document. Front ends use it
// to produce ".mub" dumps; the engine itself only reads.
func EncodeBinary(w io.Writer, doc *Document) error {
	if doc.Schema == 0 {
		doc.Schema = SchemaVersion
	}
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode binary dump: %w", err)
	}
	return nil
}

func checkSchema(schema int) error {
	if schema != SchemaVersion {
		return fmt.Errorf("%w: got %d, engine supports %d", ErrUnsupportedSchema, schema, SchemaVersion)
	}
	return nil
}
