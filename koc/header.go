package koc

import (
	"fmt"
	"strings"
)

const (
	Version          = "1.0"
	Generator        = "koc"
	GeneratorVersion = "1.0"

	KeyVersion          = "Version"
	KeyGenerator        = "Generator"
	KeyGeneratorVersion = "GeneratorVersion"
)

// Header is the decoded first line of a KOC file.
type Header map[string]string

// EncodeHeader returns the header line without line terminator.
func EncodeHeader(version, generator, generatorVersion string) string {
	return KeyVersion + "=" + version + "\t" +
		KeyGenerator + "=" + generator + "\t" +
		KeyGeneratorVersion + "=" + generatorVersion
}

// DecodeHeader splits the line into Key=Value pairs. A key given more than
// once keeps its last value.
func DecodeHeader(line string) (Header, error) {
	line = trimEOL(line)
	h := Header{}
	for _, field := range strings.Split(line, "\t") {
		key, value, found := strings.Cut(field, "=")
		if !found {
			return nil, fmt.Errorf("%w: field %q has no '='", ErrMalformedHeader, field)
		}
		h[key] = value
	}
	return h, nil
}

func (h Header) Version() string {
	return h[KeyVersion]
}

// CheckVersion returns ErrVersionMismatch unless the header carries the
// expected version.
func (h Header) CheckVersion(expected string) error {
	v, ok := h[KeyVersion]
	if !ok {
		return fmt.Errorf("%w: header has no %s, expected %q", ErrVersionMismatch, KeyVersion, expected)
	}
	if v != expected {
		return fmt.Errorf("%w: got %q, expected %q", ErrVersionMismatch, v, expected)
	}
	return nil
}

// IsHeader reports whether line looks like a KOC header line.
func IsHeader(line string) bool {
	h, err := DecodeHeader(line)
	if err != nil {
		return false
	}
	_, ok := h[KeyVersion]
	return ok
}

func trimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}
