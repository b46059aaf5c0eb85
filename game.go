package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/entity"
	"github.com/milk9111/poles/ecs/system"
	"github.com/milk9111/poles/obj"
	"github.com/milk9111/poles/prefabs"
	"go.uber.org/zap"
)

// inspectKeys maps debug keys to the tag of the object they inspect.
var inspectKeys = map[ebiten.Key]string{
	ebiten.KeyF1: "player",
	ebiten.KeyF2: "orbiter",
}

type Game struct {
	cfg    Config
	logger *zap.Logger

	world   *ecs.World
	session *obj.Session
	builder *entity.Builder
	scene   *entity.Scene
	scripts *system.ScriptSystem

	watcher *prefabs.Watcher
	dialog  *Dialog
	halted  *obj.Error
	frames  int
}

func NewGame(cfg Config, logger *zap.Logger) (*Game, error) {
	g := &Game{
		cfg:     cfg,
		logger:  logger,
		world:   ecs.NewWorld(),
		builder: entity.NewBuilder(),
		dialog:  NewDialog(logger),
	}
	g.session = obj.NewSession(g.world,
		obj.WithLogger(logger.Named("obj")),
		obj.WithHaltHandler(g.onHalt),
		obj.WithPresenter(g),
	)

	spec, err := prefabs.LoadScene(cfg.Scene)
	if err != nil {
		return nil, err
	}
	g.addSystems(spec)
	if err := g.buildScene(spec); err != nil {
		return nil, err
	}

	if cfg.Watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
		if err != nil {
			logger.Warn("prefab watcher disabled", zap.Error(err))
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// addSystems registers update systems first and the renderer last.
func (g *Game) addSystems(spec prefabs.SceneSpec) {
	g.scripts = system.NewScriptSystem(g.session, nil)
	g.world.AddSystem(g.scripts)
	g.world.AddSystem(system.NewMovementSystem(common.FixedStep))
	physics := system.NewPhysicsSystem(common.Vec(spec.Gravity.X, spec.Gravity.Y), g.logger.Named("physics"))
	g.world.AddSystem(physics)
	g.world.AddSystem(system.NewAnimationSystem())
	g.world.AddSystem(system.NewCameraSystem(g.session, common.BaseWidth, common.BaseHeight))
	g.world.AddSystem(system.NewRenderSystem(g.session))
	if g.cfg.Debug {
		g.world.AddSystem(system.NewPhysicsDebugSystem(physics, g.session))
	}
}

func (g *Game) buildScene(spec prefabs.SceneSpec) error {
	scene, err := g.builder.BuildScene(context.Background(), g.session, spec)
	if err != nil {
		return err
	}
	g.scene = scene
	return nil
}

// reload replaces the running scene. A spec that fails to load leaves the
// current scene in place.
func (g *Game) reload(changed string) {
	spec, err := prefabs.LoadScene(g.cfg.Scene)
	if err != nil {
		g.logger.Warn("scene reload skipped", zap.String("file", changed), zap.Error(err))
		return
	}
	g.session.Close()
	g.scripts.Invalidate()
	g.scene = nil
	g.halted = nil
	g.dialog.Close()
	if err := g.buildScene(spec); err != nil {
		g.logger.Error("scene reload failed", zap.String("file", changed), zap.Error(err))
		return
	}
	g.logger.Info("scene reloaded", zap.String("file", changed), zap.Bool("script", prefabs.IsScript(changed)))
}

func (g *Game) onHalt(err *obj.Error) {
	if g.halted != nil {
		return
	}
	g.halted = err
	g.dialog.Open("Halted", haltMessage(err))
}

// Present shows a GameObject snapshot in the dialog.
func (g *Game) Present(info obj.Info) {
	g.dialog.Open("GameObject", info.String())
}

func haltMessage(err *obj.Error) string {
	msg := fmt.Sprintf("%s failed on %q (entity %s):\n%v", err.Op, err.Object, err.Entity, err.Err)
	if errors.Is(err, obj.ErrNoVelocity) {
		msg += "\n\nAttach a Velocity component before applying forces."
	}
	return msg
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(name)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Warn("prefab watcher", zap.Error(err))
		default:
			return
		}
	}
}

func (g *Game) Update() error {
	g.frames++
	g.drainWatcher()

	if g.dialog.IsOpen() {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.dialog.Close()
		}
		g.dialog.Update()
		if !g.dialog.IsOpen() {
			g.halted = nil
		}
		return nil
	}

	for key, tag := range inspectKeys {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		if objs := g.session.FindWithTag(tag); len(objs) > 0 {
			_ = objs[0].ShowInfo()
		}
	}

	g.world.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.world.Draw(screen)
	if g.cfg.Debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f    Objects: %d", g.frames, ebiten.ActualFPS(), g.session.Len()))
	}
	g.dialog.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.session.Close()
}
