package devcontainer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devc/devc/pkg/embed"
)

const DefaultImage = "mcr.microsoft.com/devcontainers/base:ubuntu"

// knownFeatures maps devc-generate.yml feature names to devcontainer features.
var knownFeatures = map[string]string{
	"python": "ghcr.io/devcontainers/features/python:1",
	"node":   "ghcr.io/devcontainers/features/node:1",
}

type specBuild struct {
	Dockerfile string `json:"dockerfile"`
}

// spec is the generated devcontainer.json; field order is the output order.
type spec struct {
	Name     string                    `json:"name"`
	Image    string                    `json:"image,omitempty"`
	Build    *specBuild                `json:"build,omitempty"`
	Features map[string]map[string]any `json:"features,omitempty"`
}

func buildSpec(projectName string, in *GenerateInput) spec {
	if in == nil {
		in = &GenerateInput{}
	}

	s := spec{Name: in.Name}
	if s.Name == "" {
		s.Name = projectName
	}

	if in.Dockerfile {
		s.Build = &specBuild{Dockerfile: Dockerfilename}
	} else {
		s.Image = imageOf(in)
	}

	for _, name := range in.Features {
		ref, ok := knownFeatures[name]
		if !ok {
			continue
		}
		if s.Features == nil {
			s.Features = map[string]map[string]any{}
		}
		s.Features[ref] = map[string]any{}
	}

	return s
}

func imageOf(in *GenerateInput) string {
	if in.Image != "" {
		return in.Image
	}
	return DefaultImage
}

// Generate writes devcontainer.json, and the Dockerfile when requested, from in.
// A nil input generates the defaults.
func Generate(files Files, in *GenerateInput) error {
	if err := os.MkdirAll(files.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", files.Dir, err)
	}

	s := buildSpec(filepath.Base(files.ProjectDir), in)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", SpecFilename, err)
	}
	if err := os.WriteFile(files.Spec, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", SpecFilename, err)
	}

	if in != nil && in.Dockerfile {
		dockerfile, err := embed.RenderDockerfile(embed.DockerfileData{
			Image:    imageOf(in),
			Packages: in.Packages,
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(files.Dockerfile, []byte(dockerfile), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", Dockerfilename, err)
		}
	}

	return nil
}
