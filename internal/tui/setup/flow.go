package setup

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	huh "github.com/charmbracelet/huh"
	"github.com/jakoblorz/godot-rust-helper/internal/models"
	"github.com/jakoblorz/godot-rust-helper/internal/tui"
)

// Flow asks for the library settings `new` would otherwise take from flags.
type Flow struct {
	theme *huh.Theme
}

// Result holds the answers. Empty paths mean the Godot project root.
type Result struct {
	Targets          []models.Target
	OutputPath       string
	NativescriptPath string
}

// NewFlow constructs a Flow using the CLI palette.
func NewFlow() *Flow {
	return &Flow{theme: tui.NewHuhTheme()}
}

// Run executes the forms sequentially, starting from defaults; returns nil result on user abort.
func (f *Flow) Run(defaults Result) (*Result, error) {
	targets, err := f.selectTargets(defaults.Targets)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}

	output, nativescript, err := f.inputPaths(defaults.OutputPath, defaults.NativescriptPath)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}

	return &Result{
		Targets:          targets,
		OutputPath:       output,
		NativescriptPath: nativescript,
	}, nil
}

// TargetOptions lists every platform, preselecting the ones in selected.
func TargetOptions(selected []models.Target) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(models.AllTargets()))
	for _, target := range models.AllTargets() {
		preselect := false
		for _, s := range selected {
			if s == target {
				preselect = true
				break
			}
		}

		label := fmt.Sprintf("%s (%s)", target, target.Platform())
		opts = append(opts, huh.NewOption(label, target.String()).Selected(preselect))
	}
	return opts
}

func validateTargetSelection(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("select at least one target")
	}
	return nil
}

func (f *Flow) selectTargets(defaults []models.Target) ([]models.Target, error) {
	var selected []string

	keyMap := huh.NewDefaultKeyMap()
	keyMap.MultiSelect.Filter.SetEnabled(false)
	keyMap.MultiSelect.Toggle.SetKeys(" ")
	keyMap.MultiSelect.Toggle.SetHelp("space", "toggle selection")
	keyMap.MultiSelect.Submit.SetKeys("enter")
	keyMap.MultiSelect.Submit.SetHelp("enter", "continue")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Options(TargetOptions(defaults)...).
				Value(&selected).
				Validate(validateTargetSelection),
		).
			Title("Targets").
			Description("Platforms the library is built for."),
	).
		WithTheme(f.theme).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen()).
		WithKeyMap(keyMap)

	if err := form.Run(); err != nil {
		return nil, err
	}

	return models.ParseTargetList(selected)
}

func (f *Flow) inputPaths(output, nativescript string) (string, string, error) {
	keyMap := huh.NewDefaultKeyMap()
	keyMap.Input.Next.SetKeys("enter", "tab")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output path").
				Description("Where the .gdnlib and the compiled library go.").
				Placeholder("Godot project root").
				Value(&output),
			huh.NewInput().
				Title("Nativescript path").
				Description("Where one .gdns per module goes.").
				Placeholder("Godot project root").
				Value(&nativescript),
		).
			Title("Locations").
			Description("Relative paths resolve against the current directory."),
	).
		WithTheme(f.theme).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen()).
		WithKeyMap(keyMap)

	if err := form.Run(); err != nil {
		return "", "", err
	}

	return output, nativescript, nil
}
