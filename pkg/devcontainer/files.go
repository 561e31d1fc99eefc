// Package devcontainer manages the devcontainer spec files of a project:
// generating them from devc-generate.yml and deciding when that is allowed.
package devcontainer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devc/devc/pkg/fingerprint"
	"gopkg.in/yaml.v3"
)

const (
	DirName          = ".devcontainer"
	SpecFilename     = "devcontainer.json"
	GenerateFilename = "devc-generate.yml"
	Dockerfilename   = "Dockerfile"
)

// Files locates the spec files of one project.
type Files struct {
	ProjectDir string
	Dir        string
	Spec       string
	Generate   string
	Dockerfile string
}

// NewFiles returns the file layout under projectDir.
func NewFiles(projectDir string) Files {
	dir := filepath.Join(projectDir, DirName)
	return Files{
		ProjectDir: projectDir,
		Dir:        dir,
		Spec:       filepath.Join(dir, SpecFilename),
		Generate:   filepath.Join(dir, GenerateFilename),
		Dockerfile: filepath.Join(dir, Dockerfilename),
	}
}

// SpecFingerprint fingerprints devcontainer.json.
func (f Files) SpecFingerprint() (fingerprint.Fingerprint, error) {
	return fingerprint.Of(f.Spec)
}

// GenerateFingerprint fingerprints devc-generate.yml.
func (f Files) GenerateFingerprint() (fingerprint.Fingerprint, error) {
	return fingerprint.Of(f.Generate)
}

// GenerateInput is the content of devc-generate.yml.
type GenerateInput struct {
	Name     string   `yaml:"name"`
	Image    string   `yaml:"image"`
	Features []string `yaml:"features"`
	// Dockerfile renders a Dockerfile from Image and builds from it.
	Dockerfile bool     `yaml:"dockerfile"`
	Packages   []string `yaml:"packages"`
}

// LoadGenerateInput reads devc-generate.yml. A missing file yields nil.
func (f Files) LoadGenerateInput() (*GenerateInput, error) {
	data, err := os.ReadFile(f.Generate)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", GenerateFilename, err)
	}

	var in GenerateInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", GenerateFilename, err)
	}
	return &in, nil
}
