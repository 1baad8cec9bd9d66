package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Shape identifies one of the config layouts written by past releases
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeV1 keeps lib_path and godot_path in [general] and has no [paths]
	ShapeV1
	// ShapeV2 has [paths] without nativescript
	ShapeV2
	// ShapeV3 has the full [paths] but no plugin flag
	ShapeV3
	// ShapeCurrent is what Save writes
	ShapeCurrent
)

func (s Shape) String() string {
	switch s {
	case ShapeV1:
		return "v1"
	case ShapeV2:
		return "v2"
	case ShapeV3:
		return "v3"
	case ShapeCurrent:
		return "current"
	default:
		return "unknown"
	}
}

type generalV1 struct {
	Name      string   `toml:"name"`
	LibPath   string   `toml:"lib_path"`
	GodotPath string   `toml:"godot_path"`
	Targets   []string `toml:"targets"`
	Modules   []string `toml:"modules"`
}

type recordV1 struct {
	General generalV1 `toml:"general"`
}

type generalV2 struct {
	Name    string   `toml:"name"`
	Targets []string `toml:"targets"`
	Modules []string `toml:"modules"`
	Plugin  bool     `toml:"plugin"`
}

type pathsV2 struct {
	Lib    string `toml:"lib"`
	Godot  string `toml:"godot"`
	Output string `toml:"output"`
}

type recordV2 struct {
	General generalV2 `toml:"general"`
	Paths   pathsV2   `toml:"paths"`
}

type generalV3 struct {
	Name    string   `toml:"name"`
	Targets []string `toml:"targets"`
	Modules []string `toml:"modules"`
}

type currentPaths struct {
	Lib          string `toml:"lib"`
	Godot        string `toml:"godot"`
	Output       string `toml:"output"`
	Nativescript string `toml:"nativescript"`
}

type recordV3 struct {
	General generalV3    `toml:"general"`
	Paths   currentPaths `toml:"paths"`
}

type currentGeneral struct {
	Name    string   `toml:"name"`
	Targets []string `toml:"targets"`
	Modules []string `toml:"modules"`
	Plugin  bool     `toml:"plugin"`
}

type currentRecord struct {
	General currentGeneral `toml:"general"`
	Paths   currentPaths   `toml:"paths"`
}

// shapeSchema lists the keys a shape must define. Modules are optional in
// every shape since some releases omitted an empty list.
type shapeSchema struct {
	shape    Shape
	target   func() interface{}
	required [][]string
}

var shapeSchemas = []shapeSchema{
	{
		shape:  ShapeV1,
		target: func() interface{} { return &recordV1{} },
		required: [][]string{
			{"general", "name"}, {"general", "lib_path"}, {"general", "godot_path"}, {"general", "targets"},
		},
	},
	{
		shape:  ShapeV2,
		target: func() interface{} { return &recordV2{} },
		required: [][]string{
			{"general", "name"}, {"general", "targets"}, {"general", "plugin"},
			{"paths", "lib"}, {"paths", "godot"}, {"paths", "output"},
		},
	},
	{
		shape:  ShapeV3,
		target: func() interface{} { return &recordV3{} },
		required: [][]string{
			{"general", "name"}, {"general", "targets"},
			{"paths", "lib"}, {"paths", "godot"}, {"paths", "output"}, {"paths", "nativescript"},
		},
	},
	{
		shape:  ShapeCurrent,
		target: func() interface{} { return &currentRecord{} },
		required: [][]string{
			{"general", "name"}, {"general", "targets"}, {"general", "plugin"},
			{"paths", "lib"}, {"paths", "godot"}, {"paths", "output"}, {"paths", "nativescript"},
		},
	},
}

// DetectShape strictly decodes raw against each known layout, oldest first,
// and returns the first one that matches exactly: every required key present
// and no unknown key left over.
func DetectShape(raw []byte) (Shape, error) {
	if _, err := toml.Decode(string(raw), &map[string]interface{}{}); err != nil {
		return ShapeUnknown, err
	}

	for _, schema := range shapeSchemas {
		if matchesSchema(raw, schema) {
			return schema.shape, nil
		}
	}

	return ShapeUnknown, describeMismatch(raw)
}

// describeMismatch explains how raw differs from the current layout.
func describeMismatch(raw []byte) error {
	meta, err := toml.Decode(string(raw), &currentRecord{})
	if err != nil {
		return fmt.Errorf("content matches no known config layout: %w", err)
	}

	var missing []string
	for _, key := range shapeSchemas[len(shapeSchemas)-1].required {
		if !meta.IsDefined(key...) {
			missing = append(missing, keyPath(key))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("content matches no known config layout: missing %s", strings.Join(missing, ", "))
	}

	var unknown []string
	for _, key := range meta.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return fmt.Errorf("content matches no known config layout: unexpected %s", strings.Join(unknown, ", "))
}

func matchesSchema(raw []byte, schema shapeSchema) bool {
	meta, err := toml.Decode(string(raw), schema.target())
	if err != nil {
		return false
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return false
	}

	for _, key := range schema.required {
		if !meta.IsDefined(key...) {
			return false
		}
	}

	return true
}

func keyPath(key []string) string {
	return strings.Join(key, ".")
}
