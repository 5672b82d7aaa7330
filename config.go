package collide

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gekko3d/collide/broadphase"
	"gopkg.in/yaml.v3"
)

// DebugDrawMode selects what the debug wireframe shows.
type DebugDrawMode uint8

const (
	DebugDrawWireframe DebugDrawMode = 1 << iota
	DebugDrawAABB
	DebugDrawContacts

	DebugDrawNone DebugDrawMode = 0
	DebugDrawAll                = DebugDrawWireframe | DebugDrawAABB | DebugDrawContacts
)

var debugModeNames = []struct {
	name string
	mode DebugDrawMode
}{
	{"wireframe", DebugDrawWireframe},
	{"aabb", DebugDrawAABB},
	{"contacts", DebugDrawContacts},
}

func (m DebugDrawMode) String() string {
	var parts []string
	for _, n := range debugModeNames {
		if m&n.mode != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// UnmarshalYAML accepts a single name or a list of names.
func (m *DebugDrawMode) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	switch node.Kind {
	case yaml.ScalarNode:
		names = []string{node.Value}
	case yaml.SequenceNode:
		if err := node.Decode(&names); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: debug mode must be a name or a list of names", node.Line)
	}

	var mode DebugDrawMode
	for _, name := range names {
		switch name = strings.ToLower(strings.TrimSpace(name)); name {
		case "none", "":
		case "all":
			mode |= DebugDrawAll
		default:
			found := false
			for _, n := range debugModeNames {
				if n.name == name {
					mode |= n.mode
					found = true
				}
			}
			if !found {
				return fmt.Errorf("line %d: unknown debug mode %q", node.Line, name)
			}
		}
	}
	*m = mode
	return nil
}

func (m DebugDrawMode) MarshalYAML() (any, error) {
	var names []string
	for _, n := range debugModeNames {
		if m&n.mode != 0 {
			names = append(names, n.name)
		}
	}
	return names, nil
}

type Config struct {
	// Broadphase is "bvh" or "grid".
	Broadphase string `yaml:"broadphase"`
	// CellSize is the grid cell edge length.
	CellSize float32 `yaml:"cell_size"`
	// Margin fattens every proxy's bounds in the broad phase.
	Margin float32 `yaml:"margin"`

	Debug     bool          `yaml:"debug"`
	DebugMode DebugDrawMode `yaml:"debug_mode"`

	LogPrefix string `yaml:"log_prefix"`
	LogDebug  bool   `yaml:"log_debug"`

	// Logger receives world diagnostics. Nil means a logger built from
	// LogPrefix and LogDebug.
	Logger Logger `yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Broadphase: broadphase.KindBVH,
		CellSize:   4,
		Margin:     0.01,
		DebugMode:  DebugDrawWireframe,
		LogPrefix:  "collide",
	}
}

// ParseConfig overlays YAML data on DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return ParseConfig(data)
}

func (c Config) Validate() error {
	switch c.Broadphase {
	case broadphase.KindBVH, broadphase.KindGrid:
	default:
		return fmt.Errorf("%w: unknown broadphase %q", ErrConfiguration, c.Broadphase)
	}
	if c.Broadphase == broadphase.KindGrid && c.CellSize <= 0 {
		return fmt.Errorf("%w: cell_size must be positive, got %v", ErrConfiguration, c.CellSize)
	}
	if c.Margin < 0 {
		return fmt.Errorf("%w: margin must not be negative, got %v", ErrConfiguration, c.Margin)
	}
	return nil
}

func (c Config) logger() Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if c.LogPrefix == "" && !c.LogDebug {
		return NewNopLogger()
	}
	return NewDefaultLogger(c.LogPrefix, c.LogDebug)
}
