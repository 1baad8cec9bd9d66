package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/jakoblorz/godot-rust-helper/internal/filesystem"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/jakoblorz/godot-rust-helper/internal/paths"
)

// LegacyHelperCrate is the name the helper extension crate had before it was
// renamed to godot_rust_helper_ext.
const LegacyHelperCrate = "godot_rust_helper_extensions"

const backupAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// MigrateOptions tunes the upgrade of a legacy config
type MigrateOptions struct {
	// OutputPath overrides where a v1 library's output goes. Relative paths
	// are resolved against the config's directory.
	OutputPath string
	// Backup keeps a copy of the original file before the first rewrite
	Backup bool
}

// MigrationResult reports what a migration changed
type MigrationResult struct {
	From       Shape
	Steps      []string
	BackupPath string
}

// Changed reports whether any step rewrote the file
func (r *MigrationResult) Changed() bool {
	return len(r.Steps) > 0
}

// Migrator upgrades configs written by older releases to the current layout
type Migrator struct {
	fs       filesystem.FileSystem
	store    *Store
	resolver *paths.Resolver
}

// NewMigrator creates a Migrator
func NewMigrator(fs filesystem.FileSystem, store *Store) *Migrator {
	return &Migrator{
		fs:       fs,
		store:    store,
		resolver: paths.NewResolver(fs),
	}
}

type migrationStep struct {
	name    string
	applies Shape
	apply   func(m *Migrator, raw []byte, dir string, opts MigrateOptions) (*models.ProjectConfig, error)
}

var migrationSteps = []migrationStep{
	{name: "synthesize [paths] from lib_path and godot_path", applies: ShapeV1, apply: (*Migrator).fromV1},
	{name: "add paths.nativescript", applies: ShapeV2, apply: (*Migrator).fromV2},
	{name: "add general.plugin", applies: ShapeV3, apply: (*Migrator).fromV3},
}

// Migrate runs the upgrade chain against the file at path. Every step reads
// the file again and writes a complete config, so an interrupted migration
// can be resumed by running it again. A current config is left untouched.
func (m *Migrator) Migrate(path string, opts MigrateOptions) (*MigrationResult, error) {
	original, err := m.store.ReadRaw(path)
	if err != nil {
		return nil, err
	}

	from, err := DetectShape(original)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	result := &MigrationResult{From: from}
	if from == ShapeCurrent {
		return result, nil
	}

	if opts.Backup {
		backup, err := m.writeBackup(path, original)
		if err != nil {
			return nil, err
		}
		result.BackupPath = backup
	}

	dir := filepath.Dir(path)
	for _, step := range migrationSteps {
		raw, err := m.store.ReadRaw(path)
		if err != nil {
			return result, err
		}

		shape, err := DetectShape(raw)
		if err != nil {
			return result, &ParseError{Path: path, Err: err}
		}
		if shape != step.applies {
			continue
		}

		cfg, err := step.apply(m, raw, dir, opts)
		if err != nil {
			return result, fmt.Errorf("failed to %s: %w", step.name, err)
		}

		if err := m.store.Save(cfg, path); err != nil {
			return result, err
		}
		result.Steps = append(result.Steps, step.name)
	}

	return result, nil
}

func (m *Migrator) fromV1(raw []byte, dir string, opts MigrateOptions) (*models.ProjectConfig, error) {
	var record recordV1
	if _, err := toml.Decode(string(raw), &record); err != nil {
		return nil, err
	}

	lib, err := m.resolver.Absolute(record.General.LibPath, dir)
	if err != nil {
		return nil, err
	}
	godot, err := m.resolver.Absolute(record.General.GodotPath, dir)
	if err != nil {
		return nil, err
	}
	output, err := m.resolver.AbsoluteOr(opts.OutputPath, dir, godot)
	if err != nil {
		return nil, err
	}

	targets, err := models.ParseTargetList(record.General.Targets)
	if err != nil {
		return nil, err
	}

	return &models.ProjectConfig{
		Name:    record.General.Name,
		Targets: targets,
		Modules: record.General.Modules,
		Plugin:  false,
		Paths: models.Paths{
			Lib:          lib,
			Godot:        godot,
			Output:       output,
			Nativescript: godot,
		},
	}, nil
}

func (m *Migrator) fromV2(raw []byte, _ string, _ MigrateOptions) (*models.ProjectConfig, error) {
	var record recordV2
	if _, err := toml.Decode(string(raw), &record); err != nil {
		return nil, err
	}

	// v2 stored the output relative to the Godot project
	output, err := m.resolver.Absolute(record.Paths.Output, record.Paths.Godot)
	if err != nil {
		return nil, err
	}

	targets, err := models.ParseTargetList(record.General.Targets)
	if err != nil {
		return nil, err
	}

	return &models.ProjectConfig{
		Name:    record.General.Name,
		Targets: targets,
		Modules: record.General.Modules,
		Plugin:  record.General.Plugin,
		Paths: models.Paths{
			Lib:          record.Paths.Lib,
			Godot:        record.Paths.Godot,
			Output:       output,
			Nativescript: record.Paths.Godot,
		},
	}, nil
}

func (m *Migrator) fromV3(raw []byte, _ string, _ MigrateOptions) (*models.ProjectConfig, error) {
	var record recordV3
	if _, err := toml.Decode(string(raw), &record); err != nil {
		return nil, err
	}

	targets, err := models.ParseTargetList(record.General.Targets)
	if err != nil {
		return nil, err
	}

	return &models.ProjectConfig{
		Name:    record.General.Name,
		Targets: targets,
		Modules: record.General.Modules,
		Plugin:  false,
		Paths: models.Paths{
			Lib:          record.Paths.Lib,
			Godot:        record.Paths.Godot,
			Output:       record.Paths.Output,
			Nativescript: record.Paths.Nativescript,
		},
	}, nil
}

func (m *Migrator) writeBackup(path string, data []byte) (string, error) {
	id, err := gonanoid.Generate(backupAlphabet, 8)
	if err != nil {
		return "", fmt.Errorf("failed to generate backup id: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	backup := filepath.Join(filepath.Dir(path), fmt.Sprintf("%s.%s.toml.bak", base, id))
	if err := m.fs.WriteFile(backup, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup %s: %w", backup, err)
	}

	return backup, nil
}

// RenameLegacyDependency replaces references to the old helper crate name in
// Cargo.toml and the top level src/*.rs files of the library at libDir.
// Returns the files that were rewritten.
func (m *Migrator) RenameLegacyDependency(libDir, newName string) ([]string, error) {
	candidates := []string{filepath.Join(libDir, "Cargo.toml")}

	sources, err := m.fs.Glob(filepath.Join(libDir, "src", "*.rs"))
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	candidates = append(candidates, sources...)

	var rewritten []string
	for _, file := range candidates {
		if !m.fs.Exists(file) {
			continue
		}

		data, err := m.fs.ReadFile(file)
		if err != nil {
			return rewritten, fmt.Errorf("failed to read %s: %w", file, err)
		}

		if !bytes.Contains(data, []byte(LegacyHelperCrate)) {
			continue
		}

		updated := bytes.ReplaceAll(data, []byte(LegacyHelperCrate), []byte(newName))
		if err := m.fs.WriteFile(file, updated, 0644); err != nil {
			return rewritten, fmt.Errorf("failed to write %s: %w", file, err)
		}
		rewritten = append(rewritten, file)
	}

	return rewritten, nil
}
