package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type ColliderSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PlayerSpec tunes the player body and its per-tick movement commands.
type PlayerSpec struct {
	Name      string       `yaml:"name"`
	MoveSpeed float64      `yaml:"move_speed"`
	JumpSpeed float64      `yaml:"jump_speed"`
	Bounce    float64      `yaml:"bounce"`
	Collider  ColliderSpec `yaml:"collider"`
	Colors    FacingColors `yaml:"colors"`
}

type FacingColors struct {
	Idle  *YAMLColor `yaml:"idle"`
	Left  *YAMLColor `yaml:"left"`
	Right *YAMLColor `yaml:"right"`
}

type CoinSpec struct {
	Name     string       `yaml:"name"`
	Reward   int          `yaml:"reward"`
	Collider ColliderSpec `yaml:"collider"`
	Color    *YAMLColor   `yaml:"color"`
}

type GoalSpec struct {
	Name     string       `yaml:"name"`
	Collider ColliderSpec `yaml:"collider"`
	Color    *YAMLColor   `yaml:"color"`
}

type PlatformSpec struct {
	Name  string     `yaml:"name"`
	Color *YAMLColor `yaml:"color"`
}

func LoadPlayerSpec() (*PlayerSpec, error) {
	spec, err := LoadSpec[PlayerSpec]("player.yaml")
	if err != nil {
		return nil, err
	}
	if spec.MoveSpeed <= 0 || spec.JumpSpeed <= 0 {
		return nil, fmt.Errorf("prefabs: player.yaml: move_speed and jump_speed must be positive")
	}
	if spec.Bounce < 0 || spec.Bounce > 1 {
		return nil, fmt.Errorf("prefabs: player.yaml: bounce must be within [0, 1], got %g", spec.Bounce)
	}
	return &spec, nil
}

func LoadCoinSpec() (*CoinSpec, error) {
	spec, err := LoadSpec[CoinSpec]("coin.yaml")
	if err != nil {
		return nil, err
	}
	if spec.Reward < 0 {
		return nil, fmt.Errorf("prefabs: coin.yaml: reward must not be negative, got %d", spec.Reward)
	}
	return &spec, nil
}

func LoadGoalSpec() (*GoalSpec, error) {
	spec, err := LoadSpec[GoalSpec]("goal.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func LoadPlatformSpec() (*PlatformSpec, error) {
	spec, err := LoadSpec[PlatformSpec]("platform.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// Set groups every prefab the game needs for one level attempt.
type Set struct {
	Player   *PlayerSpec
	Coin     *CoinSpec
	Goal     *GoalSpec
	Platform *PlatformSpec
}

func LoadSet() (*Set, error) {
	player, err := LoadPlayerSpec()
	if err != nil {
		return nil, err
	}
	coin, err := LoadCoinSpec()
	if err != nil {
		return nil, err
	}
	goal, err := LoadGoalSpec()
	if err != nil {
		return nil, err
	}
	platform, err := LoadPlatformSpec()
	if err != nil {
		return nil, err
	}
	return &Set{Player: player, Coin: coin, Goal: goal, Platform: platform}, nil
}

type YAMLColor struct {
	color.Color
}

// ColorOr returns c's colour, or fallback when c is unset.
func (c *YAMLColor) ColorOr(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	var channels [4]uint8
	channels[3] = 255
	for i := 0; i*2 < len(s); i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return fmt.Errorf("invalid color format: %s: %w", value.Value, err)
		}
		channels[i] = uint8(v)
	}

	c.Color = color.NRGBA{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}
	return nil
}
