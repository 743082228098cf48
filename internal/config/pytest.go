package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// PytestSettings holds the discovery conventions of a pytest project
type PytestSettings struct {
	Source          string // Config file the settings were read from, empty for defaults
	PythonFiles     []string
	PythonClasses   []string
	PythonFunctions []string
	TestPaths       []string
}

// DefaultPytestSettings returns pytest's built-in conventions
func DefaultPytestSettings() PytestSettings {
	return PytestSettings{
		PythonFiles:     append([]string(nil), DefaultPythonFiles...),
		PythonClasses:   append([]string(nil), DefaultPythonClasses...),
		PythonFunctions: append([]string(nil), DefaultPythonFunctions...),
	}
}

// pytestConfigFiles lists the files pytest reads its ini options from, by precedence.
// pytest.ini is used even without a [pytest] section.
var pytestConfigFiles = []struct {
	name     string
	format   string
	section  string
	required bool
}{
	{"pytest.ini", "ini", "pytest", false},
	{"pyproject.toml", "toml", "tool.pytest.ini_options", true},
	{"tox.ini", "ini", "pytest", true},
	{"setup.cfg", "ini", "tool:pytest", true},
}

// LoadPytestSettings reads python_files, python_classes, python_functions and
// testpaths from the first pytest configuration file found in projectPath.
func LoadPytestSettings(projectPath string) (PytestSettings, error) {
	settings := DefaultPytestSettings()

	for _, candidate := range pytestConfigFiles {
		path := filepath.Join(projectPath, candidate.name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return settings, fmt.Errorf("config: stat %s: %w", path, err)
		}

		v := viper.NewWithOptions(viper.IniLoadOptions(ini.LoadOptions{
			AllowPythonMultilineValues: true,
			SkipUnrecognizableLines:    true,
		}))
		v.SetConfigFile(path)
		v.SetConfigType(candidate.format)
		if err := v.ReadInConfig(); err != nil {
			return settings, fmt.Errorf("config: read %s: %w", path, err)
		}
		if candidate.required && !v.IsSet(candidate.section) {
			continue
		}

		settings.Source = path
		prefix := candidate.section + "."
		if files := v.GetStringSlice(prefix + "python_files"); len(files) > 0 {
			settings.PythonFiles = files
		}
		if classes := v.GetStringSlice(prefix + "python_classes"); len(classes) > 0 {
			settings.PythonClasses = classes
		}
		if functions := v.GetStringSlice(prefix + "python_functions"); len(functions) > 0 {
			settings.PythonFunctions = functions
		}
		settings.TestPaths = v.GetStringSlice(prefix + "testpaths")

		slog.Debug("pytest settings", "source", path, "python_files", settings.PythonFiles, "testpaths", settings.TestPaths)
		return settings, nil
	}

	return settings, nil
}
