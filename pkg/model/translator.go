package model

import (
	"fmt"
	"io"

	"github.com/magiconair/properties"
)

// Translator resolves the key of a %key name to display text.
type Translator interface {
	Translate(key string) (string, bool)
}

// MapTranslator is a Translator backed by a map.
type MapTranslator map[string]string

// Translate looks up key.
func (t MapTranslator) Translate(key string) (string, bool) {
	v, ok := t[key]
	return v, ok
}

// ParseProperties reads a plugin.properties file. The file is ISO-8859-1
// with Java escapes (\uXXXX, \=, \:, \\) and backslash continuation lines.
// ${key} references are kept literally.
func ParseProperties(r io.Reader) (MapTranslator, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read properties: %w", err)
	}
	l := &properties.Loader{Encoding: properties.ISO_8859_1, DisableExpansion: true}
	p, err := l.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}
	return MapTranslator(p.Map()), nil
}
