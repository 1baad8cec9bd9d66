package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
)

// FileName is the config file every library root contains.
const FileName = "godot-rust-helper.toml"

// ErrConfigMissing is returned when no config file exists at the given path
var ErrConfigMissing = errors.New("no " + FileName + " found; run this command inside a library created with `new` or `plugin`")

// ParseError is returned when a config file matches no usable layout
type ParseError struct {
	Path  string
	Shape Shape
	Err   error
}

func (e *ParseError) Error() string {
	if e.Shape != ShapeUnknown && e.Shape != ShapeCurrent {
		return fmt.Sprintf("%s uses the %s layout; run `godot-rust-helper update` first", e.Path, e.Shape)
	}
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Store reads and writes library configs
type Store struct {
	fs     filesystem.FileSystem
	locker Locker
}

// NewStore creates a Store. A nil locker disables cross-process locking.
func NewStore(fs filesystem.FileSystem, locker Locker) *Store {
	if locker == nil {
		locker = NopLocker{}
	}
	return &Store{fs: fs, locker: locker}
}

// PathIn returns the config path inside dir
func PathIn(dir string) string {
	return filepath.Join(dir, FileName)
}

// Exists reports whether dir holds a config file
func (s *Store) Exists(dir string) bool {
	return s.fs.Exists(PathIn(dir))
}

// ReadRaw returns the config file's bytes, mapping a missing file to ErrConfigMissing.
func (s *Store) ReadRaw(path string) ([]byte, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigMissing
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Load reads a config in the current layout. Legacy layouts are rejected with
// a ParseError pointing at the update command.
func (s *Store) Load(path string) (*models.ProjectConfig, error) {
	data, err := s.ReadRaw(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Decode(data)
	if err != nil {
		shape, _ := DetectShape(data)
		return nil, &ParseError{Path: path, Shape: shape, Err: err}
	}

	return cfg, nil
}

// Save validates cfg and writes it to path
func (s *Store) Save(cfg *models.ProjectConfig, path string) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}

	if err := s.fs.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Update loads the config at path, applies fn and saves the result while
// holding the config lock. Nothing is written if fn fails.
func (s *Store) Update(path string, fn func(cfg *models.ProjectConfig) error) (*models.ProjectConfig, error) {
	unlock, err := s.locker.Lock(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock.Unlock() }()

	cfg, err := s.Load(path)
	if err != nil {
		return nil, err
	}

	if err := fn(cfg); err != nil {
		return nil, err
	}

	if err := s.Save(cfg, path); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Encode serializes cfg with [general] first and [paths] second.
func Encode(cfg *models.ProjectConfig) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	record := currentRecord{
		General: currentGeneral{
			Name:    cfg.Name,
			Targets: models.TargetStrings(cfg.Targets),
			Modules: append([]string{}, cfg.Modules...),
			Plugin:  cfg.Plugin,
		},
		Paths: currentPaths{
			Lib:          cfg.Paths.Lib,
			Godot:        cfg.Paths.Godot,
			Output:       cfg.Paths.Output,
			Nativescript: cfg.Paths.Nativescript,
		},
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(record); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode parses a config in the current layout
func Decode(data []byte) (*models.ProjectConfig, error) {
	shape, err := DetectShape(data)
	if err != nil {
		return nil, err
	}
	if shape != ShapeCurrent {
		return nil, fmt.Errorf("config uses the %s layout", shape)
	}

	var record currentRecord
	if _, err := toml.Decode(string(data), &record); err != nil {
		return nil, err
	}

	return fromCurrent(record)
}

func fromCurrent(record currentRecord) (*models.ProjectConfig, error) {
	targets, err := models.ParseTargetList(record.General.Targets)
	if err != nil {
		return nil, err
	}

	cfg := &models.ProjectConfig{
		Name:    record.General.Name,
		Targets: targets,
		Modules: append([]string{}, record.General.Modules...),
		Plugin:  record.General.Plugin,
		Paths: models.Paths{
			Lib:          record.Paths.Lib,
			Godot:        record.Paths.Godot,
			Output:       record.Paths.Output,
			Nativescript: record.Paths.Nativescript,
		},
	}

	return cfg, nil
}
