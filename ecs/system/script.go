package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/component"
	"github.com/milk9111/poles/obj"
	"github.com/milk9111/poles/prefabs"
	"go.uber.org/zap"
)

// ScriptLoader resolves a Script.Path to source.
type ScriptLoader func(path string) ([]byte, error)

// ScriptSystem runs one tengo program per scripted entity every tick. The
// program sees `self` (the GameObject API), `dt` and a `state` map that
// persists between runs.
type ScriptSystem struct {
	session  *obj.Session
	load     ScriptLoader
	dt       float64
	logger   *zap.Logger
	runtimes map[ecs.Entity]*scriptRuntime
}

type scriptRuntime struct {
	path     string
	hash     uint64
	compiled *tengo.Compiled
	state    *tengo.Map
	failed   bool
}

func NewScriptSystem(s *obj.Session, load ScriptLoader) *ScriptSystem {
	if load == nil {
		load = prefabs.LoadScript
	}
	return &ScriptSystem{
		session:  s,
		load:     load,
		dt:       common.FixedStep,
		logger:   s.Logger().Named("script"),
		runtimes: make(map[ecs.Entity]*scriptRuntime),
	}
}

func (ss *ScriptSystem) Requires() []component.ComponentID {
	return []component.ComponentID{component.ScriptComponent.Kind().ID()}
}

// Invalidate drops compiled programs so the next tick reloads them.
func (ss *ScriptSystem) Invalidate() {
	clear(ss.runtimes)
}

func (ss *ScriptSystem) Update(w *ecs.World) {
	members := w.Members(ss)
	live := make(map[ecs.Entity]struct{}, len(members))

	for _, e := range members {
		live[e] = struct{}{}
		g, ok := ss.session.ObjectFor(e)
		if !ok {
			continue
		}
		sc, ok := ecs.Get(w, e, component.ScriptComponent.Kind())
		if !ok {
			continue
		}
		rt, err := ss.runtime(e, g, sc)
		if err != nil {
			ss.logger.Error("script compile failed",
				zap.String("object", g.Name()),
				zap.String("path", sc.Path),
				zap.Error(err),
			)
			continue
		}
		if rt.failed {
			continue
		}
		if err := rt.run(ss.dt); err != nil {
			rt.failed = true
			ss.logger.Error("script run failed",
				zap.String("object", g.Name()),
				zap.String("path", rt.path),
				zap.Error(err),
			)
		}
	}

	for e := range ss.runtimes {
		if _, ok := live[e]; !ok {
			delete(ss.runtimes, e)
		}
	}
}

func (ss *ScriptSystem) runtime(e ecs.Entity, g *obj.GameObject, sc *component.Script) (*scriptRuntime, error) {
	if rt, ok := ss.runtimes[e]; ok && rt.path == sc.Path && (len(sc.Source) == 0 || rt.hash == xxhash.Sum64(sc.Source)) {
		return rt, nil
	}
	src := sc.Source
	if len(src) == 0 {
		if strings.TrimSpace(sc.Path) == "" {
			return nil, errors.New("script has neither source nor path")
		}
		data, err := ss.load(sc.Path)
		if err != nil {
			return nil, err
		}
		src = data
	}
	hash := xxhash.Sum64(src)
	if rt, ok := ss.runtimes[e]; ok && rt.hash == hash {
		rt.path = sc.Path
		return rt, nil
	}

	script := tengo.NewScript(src)
	_ = script.Add("dt", 0.0)
	_ = script.Add("self", map[string]any{})
	_ = script.Add("state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", sc.Path, err)
	}
	rt := &scriptRuntime{
		path:     sc.Path,
		hash:     hash,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	if err := compiled.Set("self", buildSelf(g)); err != nil {
		return nil, err
	}
	if err := compiled.Set("state", rt.state); err != nil {
		return nil, err
	}
	ss.runtimes[e] = rt
	ss.logger.Debug("script compiled", zap.String("object", g.Name()), zap.String("path", sc.Path))
	return rt, nil
}

func (rt *scriptRuntime) run(dt float64) error {
	if err := rt.compiled.Set("dt", dt); err != nil {
		return err
	}
	return rt.compiled.Run()
}

// buildSelf exposes the GameObject API to a script. Soft failures return
// false; halting failures abort the run.
func buildSelf(g *obj.GameObject) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["name"] = &tengo.String{Value: g.Name()}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		v, _ := g.Position()
		return vectorObject(v), nil
	}}

	values["relative_position"] = &tengo.UserFunction{Name: "relative_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		v, _ := g.RelativePosition()
		return vectorObject(v), nil
	}}

	values["set_position"] = &tengo.UserFunction{Name: "set_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		v, err := vectorArgs(args)
		if err != nil {
			return nil, err
		}
		return resultObject(g.SetPosition(v))
	}}

	values["add_force"] = &tengo.UserFunction{Name: "add_force", Value: func(args ...tengo.Object) (tengo.Object, error) {
		v, err := vectorArgs(args)
		if err != nil {
			return nil, err
		}
		return resultObject(g.AddForce(v))
	}}

	values["reset_force"] = &tengo.UserFunction{Name: "reset_force", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return resultObject(g.ResetForce())
	}}

	values["tag"] = &tengo.UserFunction{Name: "tag", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: g.Tag()}, nil
	}}

	values["set_tag"] = &tengo.UserFunction{Name: "set_tag", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		tag, ok := tengo.ToString(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "tag", Expected: "string", Found: args[0].TypeName()}
		}
		g.SetTag(tag)
		return tengo.TrueValue, nil
	}}

	values["change_animation"] = &tengo.UserFunction{Name: "change_animation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		name, ok := tengo.ToString(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "name", Expected: "string", Found: args[0].TypeName()}
		}
		return resultObject(g.ChangeAnimation(name))
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vectorObject(v common.Vector2D) tengo.Object {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"x": &tengo.Float{Value: v.X},
		"y": &tengo.Float{Value: v.Y},
	}}
}

func vectorArgs(args []tengo.Object) (common.Vector2D, error) {
	if len(args) != 2 {
		return common.Zero, tengo.ErrWrongNumArguments
	}
	x, ok := tengo.ToFloat64(args[0])
	if !ok {
		return common.Zero, tengo.ErrInvalidArgumentType{Name: "x", Expected: "float", Found: args[0].TypeName()}
	}
	y, ok := tengo.ToFloat64(args[1])
	if !ok {
		return common.Zero, tengo.ErrInvalidArgumentType{Name: "y", Expected: "float", Found: args[1].TypeName()}
	}
	return common.Vec(x, y), nil
}

func resultObject(err error) (tengo.Object, error) {
	if err == nil {
		return tengo.TrueValue, nil
	}
	if obj.IsHalting(err) {
		return nil, err
	}
	return tengo.FalseValue, nil
}
