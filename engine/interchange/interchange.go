// Package interchange is the human-readable YAML form of motion
// containers, neutral animations and rigs. Field names are part of the
// file format and must not change.
package interchange

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	FormatMotion  = "anima/motion"
	FormatNeutral = "anima/neutral"
	FormatRig     = "anima/rig"

	// Version is the newest document version this package writes and reads.
	Version = 1
)

var (
	ErrWrongFormat        = errors.New("unexpected document format")
	ErrUnsupportedVersion = errors.New("unsupported document version")
)

// Header starts every document.
type Header struct {
	Format  string `yaml:"format"`
	Version int    `yaml:"version"`
}

// Detect returns the format named by a document header.
func Detect(data []byte) (string, error) {
	var h Header
	if err := yaml.Unmarshal(data, &h); err != nil {
		return "", err
	}
	if h.Format == "" {
		return "", fmt.Errorf("%w: no format key", ErrWrongFormat)
	}
	return h.Format, nil
}

func (h Header) check(format string) error {
	if h.Format != format {
		return fmt.Errorf("%w: want %q, got %q", ErrWrongFormat, format, h.Format)
	}
	if h.Version < 1 || h.Version > Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	return nil
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode checks the header against format, then decodes the whole
// document rejecting unknown keys, so that typos in hand-edited files are
// reported instead of dropped.
func decode(data []byte, format string, v interface{}) error {
	var h Header
	if err := yaml.Unmarshal(data, &h); err != nil {
		return err
	}
	if err := h.check(format); err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}
