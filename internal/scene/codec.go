package scene

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/san-kum/mpcsim/internal/models"
	"github.com/san-kum/mpcsim/internal/mpc"
	"gopkg.in/yaml.v3"
)

type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatFor picks TOML for .toml files and YAML for everything else.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

func (f Format) String() string {
	if f == FormatTOML {
		return "toml"
	}
	return "yaml"
}

type agentDoc struct {
	// Kind may be omitted; it is then inferred from the state length.
	Kind  string    `yaml:"kind,omitempty" toml:"kind,omitempty"`
	State []float64 `yaml:"state" toml:"state"`
	Goal  []float64 `yaml:"goal" toml:"goal"`
}

type document struct {
	Agents []agentDoc `yaml:"agents" toml:"agents"`
}

// Encode serializes every agent's kind, state and goal.
func Encode(s *Scene, format Format) ([]byte, error) {
	doc := document{Agents: make([]agentDoc, 0, len(s.agents))}
	for i, a := range s.agents {
		kind, err := models.KindOf(a)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		goal := a.GoalPose()
		doc.Agents = append(doc.Agents, agentDoc{
			Kind:  kind,
			State: a.State(),
			Goal:  goal[:],
		})
	}

	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return yaml.Marshal(doc)
	}
}

// Decode builds a scene from serialized agents. Agent i gets its own random
// source seeded with params.Seed+i. Nothing is returned on any failure.
func Decode(data []byte, format Format, params Params) (*Scene, error) {
	var doc document
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}

	registry := models.NewRegistry()
	agents := make([]mpc.Agent, 0, len(doc.Agents))
	for i, ad := range doc.Agents {
		if len(ad.Goal) != 3 {
			return nil, fmt.Errorf("%w: agent %d goal has %d components, want 3", ErrMalformedScene, i, len(ad.Goal))
		}

		kind := ad.Kind
		if kind == "" {
			inferred, err := registry.InferKind(len(ad.State))
			if err != nil {
				return nil, fmt.Errorf("%w: agent %d: %v", ErrMalformedScene, i, err)
			}
			kind = inferred
		}

		rng := rand.New(rand.NewSource(params.Seed + int64(i)))
		goal := mpc.Pose{ad.Goal[0], ad.Goal[1], ad.Goal[2]}
		a, err := registry.GetModel(kind, ad.State, goal, rng)
		if err != nil {
			return nil, fmt.Errorf("%w: agent %d: %v", ErrMalformedScene, i, err)
		}
		agents = append(agents, a)
	}

	return New(params, agents...), nil
}

// Load reads a scene file; the format follows the file extension.
func Load(path string, params Params) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Decode(data, FormatFor(path), params)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Save writes the scene next to path and renames it into place, so readers see
// either the old file or the complete new one.
func (s *Scene) Save(path string) error {
	data, err := Encode(s, FormatFor(path))
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
