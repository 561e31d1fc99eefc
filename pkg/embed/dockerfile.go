package embed

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/Dockerfile.tmpl
var DockerfileTemplate string

var dockerfileTmpl = template.Must(template.New("Dockerfile").Parse(DockerfileTemplate))

// DockerfileData fills the embedded Dockerfile template.
type DockerfileData struct {
	Image    string
	Packages []string
}

// RenderDockerfile renders the embedded Dockerfile template.
func RenderDockerfile(data DockerfileData) (string, error) {
	if data.Image == "" {
		return "", fmt.Errorf("dockerfile base image cannot be empty")
	}

	var b strings.Builder
	if err := dockerfileTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render Dockerfile: %w", err)
	}
	return strings.TrimSpace(b.String()) + "\n", nil
}
