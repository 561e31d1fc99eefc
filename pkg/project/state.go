package project

import "fmt"

// Key names a field of the persisted state record.
type Key string

const (
	KeyProjectPath          Key = "project_path"
	KeyContainerID          Key = "container_id"
	KeyDevcontainerJSONHash Key = "devcontainer_json_hash"
	KeyDevcGenerateHash     Key = "devc_generate_hash"
	KeyContainerSpecHash    Key = "container_devcontainer_json_hash"
)

// GeneratingMarker is stored as the generation input fingerprint while a
// generation or build is in flight, so an interrupted run regenerates.
const GeneratingMarker = "generating"

// State is the persisted record of one project. Empty fields are absent.
type State struct {
	ProjectPath          string `yaml:"project_path"`
	ContainerID          string `yaml:"container_id,omitempty"`
	DevcontainerJSONHash string `yaml:"devcontainer_json_hash,omitempty"`
	DevcGenerateHash     string `yaml:"devc_generate_hash,omitempty"`
	// ContainerSpecHash is the devcontainer.json fingerprint the cached
	// container was built from.
	ContainerSpecHash string `yaml:"container_devcontainer_json_hash,omitempty"`
}

func (s *State) field(key Key) (*string, error) {
	switch key {
	case KeyContainerID:
		return &s.ContainerID, nil
	case KeyDevcontainerJSONHash:
		return &s.DevcontainerJSONHash, nil
	case KeyDevcGenerateHash:
		return &s.DevcGenerateHash, nil
	case KeyContainerSpecHash:
		return &s.ContainerSpecHash, nil
	case KeyProjectPath:
		return nil, fmt.Errorf("%s is read-only", key)
	default:
		return nil, fmt.Errorf("unknown state key %q", key)
	}
}

// Get returns the value stored under key; "" means absent.
func (s *State) Get(key Key) (string, error) {
	if key == KeyProjectPath {
		return s.ProjectPath, nil
	}
	f, err := s.field(key)
	if err != nil {
		return "", err
	}
	return *f, nil
}

// Set stores value under key; "" clears it.
func (s *State) Set(key Key, value string) error {
	f, err := s.field(key)
	if err != nil {
		return err
	}
	*f = value
	return nil
}
