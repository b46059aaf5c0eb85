package entity

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/poles/assets"
	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs/component"
	"github.com/milk9111/poles/obj"
	"github.com/milk9111/poles/prefabs"
	"golang.org/x/image/colornames"
	"go.uber.org/zap"
)

var ErrMissingImage = errors.New("entity: image not preloaded")

// Scene is the result of building a SceneSpec.
type Scene struct {
	Name    string
	Objects []*obj.GameObject
	Camera  *obj.GameObject

	byName map[string]*obj.GameObject
}

// Object returns the built object with the given spec name.
func (s *Scene) Object(name string) (*obj.GameObject, bool) {
	g, ok := s.byName[name]
	return g, ok
}

// Builder turns scene specs into GameObjects. The zero value is not usable;
// call NewBuilder.
type Builder struct {
	Decode     ImageDecoder
	ToImage    func(image.Image) *ebiten.Image
	LoadScript func(path string) ([]byte, error)
}

func NewBuilder() *Builder {
	return &Builder{
		Decode:     assets.DecodeImage,
		ToImage:    ebiten.NewImageFromImage,
		LoadScript: prefabs.LoadScript,
	}
}

type buildContext struct {
	builder *Builder
	images  map[string]image.Image
}

type componentBuildFn func(g *obj.GameObject, spec prefabs.ObjectSpec, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"velocity":     addVelocity,
	"sprite":       addSprite,
	"text":         addText,
	"render_layer": addRenderLayer,
	"animation":    addAnimation,
	"camera":       addCamera,
	"physics_body": addPhysicsBody,
	"script":       addScript,
}

// Sprite precedes animation so the animation system finds its sheet.
var componentBuildOrder = []string{
	"velocity",
	"sprite",
	"text",
	"render_layer",
	"animation",
	"camera",
	"physics_body",
	"script",
}

// BuildScene creates one GameObject per spec entry, links parents by name in
// a second pass and installs the scene camera. Objects created before a
// failure are destroyed again.
func (b *Builder) BuildScene(ctx context.Context, s *obj.Session, spec prefabs.SceneSpec) (*Scene, error) {
	if s == nil {
		return nil, fmt.Errorf("build scene: session is nil")
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("build scene %q: %w", spec.Name, err)
	}

	images, err := PreloadImages(ctx, spec.ImagePaths(), b.Decode)
	if err != nil {
		return nil, fmt.Errorf("build scene %q: %w", spec.Name, err)
	}

	scene := &Scene{Name: spec.Name, byName: make(map[string]*obj.GameObject, len(spec.Objects))}
	bctx := &buildContext{builder: b, images: images}

	fail := func(err error) (*Scene, error) {
		for _, g := range scene.Objects {
			_ = s.DestroyGameObject(g)
		}
		return nil, fmt.Errorf("build scene %q: %w", spec.Name, err)
	}

	for _, o := range spec.Objects {
		g, err := s.CreateGameObject(o.Name)
		if err != nil {
			return fail(err)
		}
		scene.Objects = append(scene.Objects, g)
		scene.byName[o.Name] = g

		g.SetTag(o.Tag)
		if err := g.SetPositionXY(o.Position.X, o.Position.Y); err != nil {
			return fail(err)
		}
		for _, name := range componentBuildOrder {
			if err := componentRegistry[name](g, o, bctx); err != nil {
				return fail(fmt.Errorf("object %q: %s: %w", o.Name, name, err))
			}
		}
	}

	for _, o := range spec.Objects {
		if o.Parent == "" {
			continue
		}
		child, parent := scene.byName[o.Name], scene.byName[o.Parent]
		if err := child.SetParent(parent); err != nil {
			return fail(fmt.Errorf("object %q: parent %q: %w", o.Name, o.Parent, err))
		}
	}

	if spec.Camera != "" {
		cam := scene.byName[spec.Camera]
		if err := s.SetCamera(cam); err != nil {
			return fail(err)
		}
		scene.Camera = cam
	}

	s.Logger().Info("scene built",
		zap.String("scene", spec.Name),
		zap.Int("objects", len(scene.Objects)),
		zap.Int("images", len(images)),
	)
	return scene, nil
}

func addVelocity(g *obj.GameObject, spec prefabs.ObjectSpec, _ *buildContext) error {
	if spec.Velocity == nil {
		return nil
	}
	_, err := obj.AddComponent(g, component.VelocityComponent.Kind(), &component.Velocity{
		Force: common.Vec(spec.Velocity.X, spec.Velocity.Y),
	})
	return err
}

func addSprite(g *obj.GameObject, spec prefabs.ObjectSpec, ctx *buildContext) error {
	ss := spec.Sprite
	if ss == nil {
		return nil
	}

	var src image.Image
	if ss.Image != "" {
		img, ok := ctx.images[ss.Image]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingImage, ss.Image)
		}
		src = img
	} else {
		src = solidImage(ss.Width, ss.Height, ss.Color.Or(colornames.Magenta))
	}

	sprite := component.NewSpriteRenderer(ctx.builder.ToImage(src))
	sprite.OriginX = ss.OriginX
	sprite.OriginY = ss.OriginY
	sprite.Parallax = parallaxFromSpec(ss.Parallax)
	_, err := obj.AddComponent(g, component.SpriteRendererComponent.Kind(), sprite)
	return err
}

func addText(g *obj.GameObject, spec prefabs.ObjectSpec, _ *buildContext) error {
	ts := spec.Text
	if ts == nil {
		return nil
	}
	tr := component.NewTextRenderer(ts.Value)
	tr.Color = ts.Color.Or(tr.Color)
	tr.Parallax = parallaxFromSpec(ts.Parallax)
	_, err := obj.AddComponent(g, component.TextRendererComponent.Kind(), tr)
	return err
}

func parallaxFromSpec(ps prefabs.ParallaxSpec) component.Parallax {
	return component.Parallax{
		Index:        ps.IndexOr(1),
		Compensation: common.Vec(ps.Compensation.X, ps.Compensation.Y),
	}
}

func addRenderLayer(g *obj.GameObject, spec prefabs.ObjectSpec, _ *buildContext) error {
	if spec.RenderLayer == nil {
		return nil
	}
	_, err := obj.AddComponent(g, component.RenderLayerComponent.Kind(), &component.RenderLayer{Index: spec.RenderLayer.Index})
	return err
}

func addAnimation(g *obj.GameObject, spec prefabs.ObjectSpec, _ *buildContext) error {
	as := spec.Animation
	if as == nil {
		return nil
	}
	anim := &component.Animation{Defs: make(map[string]component.AnimationDef, len(as.Defs))}
	for name, def := range as.Defs {
		anim.Defs[name] = component.AnimationDef{
			Row:        def.Row,
			ColStart:   def.ColStart,
			FrameCount: def.FrameCount,
			FrameW:     def.FrameW,
			FrameH:     def.FrameH,
			FPS:        def.FPS,
			Loop:       def.Loop,
		}
	}
	if _, err := obj.AddComponent(g, component.AnimationComponent.Kind(), anim); err != nil {
		return err
	}
	if as.Current != "" {
		return g.ChangeAnimation(as.Current)
	}
	return nil
}

func addCamera(g *obj.GameObject, spec prefabs.ObjectSpec, _ *buildContext) error {
	if spec.Camera == nil {
		return nil
	}
	_, err := obj.AddComponent(g, component.CameraComponent.Kind(), &component.Camera{
		Correction: common.Vec(common.BaseWidth/2, common.BaseHeight/2),
		Target:     spec.Camera.Target,
		Smoothness: spec.Camera.Smoothness,
	})
	return err
}

func addPhysicsBody(g *obj.GameObject, spec prefabs.ObjectSpec, _ *buildContext) error {
	pb := spec.PhysicsBody
	if pb == nil {
		return nil
	}
	_, err := obj.AddComponent(g, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:    pb.Width,
		Height:   pb.Height,
		Mass:     pb.Mass,
		Friction: pb.Friction,
		Static:   pb.Static,
	})
	return err
}

func addScript(g *obj.GameObject, spec prefabs.ObjectSpec, ctx *buildContext) error {
	if spec.Script == "" {
		return nil
	}
	src, err := ctx.builder.LoadScript(spec.Script)
	if err != nil {
		return fmt.Errorf("load script %s: %w", spec.Script, err)
	}
	_, err = obj.AddComponent(g, component.ScriptComponent.Kind(), &component.Script{Path: spec.Script, Source: src})
	return err
}
