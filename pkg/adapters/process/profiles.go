package process

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile describes one launchable application under test, as declared
// in an apps file. Profiles keep launch details out of test code so the
// same suite can drive differently built binaries.
type Profile struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Env         map[string]string `yaml:"env" json:"env"`
	Dir         string            `yaml:"dir" json:"dir"`
	Port        int               `yaml:"port" json:"port"`
	Description string            `yaml:"description" json:"description"`
}

// profilesFile is the structure of apps.yaml.
type profilesFile struct {
	Apps []Profile `yaml:"apps" json:"apps"`
}

// LoadProfiles reads an apps file (YAML, or JSON by extension) and
// returns the profiles by name. Entries without a name are dropped.
func LoadProfiles(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading apps file: %w", err)
	}

	var file profilesFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing apps file %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing apps file %s: %w", path, err)
		}
	}

	profiles := make(map[string]Profile, len(file.Apps))
	for _, p := range file.Apps {
		if p.Name == "" {
			continue
		}
		profiles[p.Name] = p
	}
	return profiles, nil
}

// Start launches the profile's application. Options given here stack on
// top of the profile's own settings.
func (p Profile) Start(ctx context.Context, opts ...Option) (*App, error) {
	if p.Command == "" {
		return nil, fmt.Errorf("profile %q has no command", p.Name)
	}

	base := []Option{
		WithArgs(p.Args...),
		WithDir(p.Dir),
	}
	for k, v := range p.Env {
		base = append(base, WithEnv(k, v))
	}
	if p.Port != 0 {
		base = append(base, WithPort(p.Port))
	}
	return Start(ctx, p.Command, append(base, opts...)...)
}
