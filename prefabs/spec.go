package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrDuplicateName = errors.New("prefabs: duplicate object name")
	ErrUnknownParent = errors.New("prefabs: unknown parent")
	ErrUnnamed       = errors.New("prefabs: object has no name")
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

// SceneSpec lists the objects of one scene. Camera names the object used as
// the active camera.
type SceneSpec struct {
	Name    string       `yaml:"name"`
	Camera  string       `yaml:"camera"`
	Gravity VecSpec      `yaml:"gravity"`
	Objects []ObjectSpec `yaml:"objects"`
}

// LoadScene reads a scene file and validates its object graph.
func LoadScene(filename string) (SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](filename)
	if err != nil {
		return SceneSpec{}, err
	}
	if err := spec.Validate(); err != nil {
		return SceneSpec{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return spec, nil
}

// ParseScene decodes and validates scene YAML.
func ParseScene(data []byte) (SceneSpec, error) {
	var spec SceneSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return SceneSpec{}, fmt.Errorf("prefabs: unmarshal scene: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return SceneSpec{}, err
	}
	return spec, nil
}

// Validate checks that names are unique and parents refer to listed objects.
func (s SceneSpec) Validate() error {
	names := make(map[string]struct{}, len(s.Objects))
	for i, o := range s.Objects {
		if strings.TrimSpace(o.Name) == "" {
			return fmt.Errorf("object %d: %w", i, ErrUnnamed)
		}
		if _, ok := names[o.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, o.Name)
		}
		names[o.Name] = struct{}{}
	}
	for _, o := range s.Objects {
		if o.Parent == "" {
			continue
		}
		if _, ok := names[o.Parent]; !ok {
			return fmt.Errorf("%w: %q (object %q)", ErrUnknownParent, o.Parent, o.Name)
		}
	}
	if s.Camera != "" {
		if _, ok := names[s.Camera]; !ok {
			return fmt.Errorf("%w: camera %q", ErrUnknownParent, s.Camera)
		}
	}
	return nil
}

// Object returns the spec with the given name.
func (s SceneSpec) Object(name string) (ObjectSpec, bool) {
	for _, o := range s.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return ObjectSpec{}, false
}

// ImagePaths returns every distinct sprite image referenced by the scene.
func (s SceneSpec) ImagePaths() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range s.Objects {
		if o.Sprite == nil || o.Sprite.Image == "" {
			continue
		}
		if _, ok := seen[o.Sprite.Image]; ok {
			continue
		}
		seen[o.Sprite.Image] = struct{}{}
		out = append(out, o.Sprite.Image)
	}
	return out
}

type ObjectSpec struct {
	Name        string           `yaml:"name"`
	Tag         string           `yaml:"tag"`
	Parent      string           `yaml:"parent"`
	Position    VecSpec          `yaml:"position"`
	Velocity    *VecSpec         `yaml:"velocity"`
	Sprite      *SpriteSpec      `yaml:"sprite"`
	Text        *TextSpec        `yaml:"text"`
	Camera      *CameraSpec      `yaml:"camera"`
	Animation   *AnimationSpec   `yaml:"animation"`
	PhysicsBody *PhysicsBodySpec `yaml:"physics_body"`
	Script      string           `yaml:"script"`
	RenderLayer *RenderLayerSpec `yaml:"render_layer"`
}

type VecSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type ParallaxSpec struct {
	Index        *float64 `yaml:"index"`
	Compensation VecSpec  `yaml:"compensation"`
}

// IndexOr returns the configured index, or def when none is set.
func (p ParallaxSpec) IndexOr(def float64) float64 {
	if p.Index == nil {
		return def
	}
	return *p.Index
}

// SpriteSpec draws either an image file or, without one, a solid rectangle
// of Width x Height in Color.
type SpriteSpec struct {
	Image    string       `yaml:"image"`
	Color    *YAMLColor   `yaml:"color"`
	Width    int          `yaml:"width"`
	Height   int          `yaml:"height"`
	OriginX  float64      `yaml:"origin_x"`
	OriginY  float64      `yaml:"origin_y"`
	Parallax ParallaxSpec `yaml:"parallax"`
}

type TextSpec struct {
	Value    string       `yaml:"value"`
	Color    *YAMLColor   `yaml:"color"`
	Parallax ParallaxSpec `yaml:"parallax"`
}

type CameraSpec struct {
	Target     string  `yaml:"target"`
	Smoothness float64 `yaml:"smoothness"`
}

type AnimationSpec struct {
	Defs    map[string]AnimationDefSpec `yaml:"defs"`
	Current string                      `yaml:"current"`
}

type AnimationDefSpec struct {
	Row        int     `yaml:"row"`
	ColStart   int     `yaml:"col_start"`
	FrameCount int     `yaml:"frame_count"`
	FrameW     int     `yaml:"frame_w"`
	FrameH     int     `yaml:"frame_h"`
	FPS        float64 `yaml:"fps"`
	Loop       bool    `yaml:"loop"`
}

type PhysicsBodySpec struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Mass     float64 `yaml:"mass"`
	Friction float64 `yaml:"friction"`
	Static   bool    `yaml:"static"`
}

type RenderLayerSpec struct {
	Index int `yaml:"index"`
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := parse(i * 2)
		if err != nil {
			return fmt.Errorf("invalid color format: %s: %w", value.Value, err)
		}
		rgba[i] = v
	}

	c.Color = color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return nil
}

// Or returns the wrapped color, or def when unset.
func (c *YAMLColor) Or(def color.Color) color.Color {
	if c == nil || c.Color == nil {
		return def
	}
	return c.Color
}
