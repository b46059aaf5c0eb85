package obj

import (
	"errors"
	"testing"

	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/component"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingPresenter struct {
	shown []Info
}

func (p *recordingPresenter) Present(info Info) {
	p.shown = append(p.shown, info)
}

type fixture struct {
	session   *Session
	logs      *observer.ObservedLogs
	halts     []*Error
	presenter *recordingPresenter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	f := &fixture{logs: logs, presenter: &recordingPresenter{}}
	f.session = NewSession(ecs.NewWorld(),
		WithLogger(zap.New(core)),
		WithHaltHandler(func(err *Error) { f.halts = append(f.halts, err) }),
		WithPresenter(f.presenter),
	)
	return f
}

func (f *fixture) object(t *testing.T, name string, x, y float64) *GameObject {
	t.Helper()
	g, err := f.session.CreateGameObject(name)
	require.NoError(t, err)
	require.NoError(t, g.SetPositionXY(x, y))
	return g
}

func (f *fixture) warnings() int {
	return f.logs.FilterMessage("game object operation failed").Len()
}

func TestCreateAttachesPosition(t *testing.T) {
	f := newFixture(t)
	g, err := f.session.CreateGameObject("hero")
	require.NoError(t, err)

	require.True(t, HasComponent(g, component.PositionComponent.Kind()))
	require.False(t, g.HasParent())
	require.Equal(t, "hero", g.Name())
	require.Equal(t, 1, f.session.World().ComponentCount(g.Entity()))

	rel, err := g.RelativePosition()
	require.NoError(t, err)
	require.Equal(t, common.Zero, rel)

	found, ok := f.session.ObjectFor(g.Entity())
	require.True(t, ok)
	require.Same(t, g, found)
}

func TestPositionWithoutParentEqualsRelative(t *testing.T) {
	f := newFixture(t)
	for _, v := range []common.Vector2D{common.Zero, common.Vec(10, 10), common.Vec(-3.25, 7e6)} {
		g := f.object(t, "solo", v.X, v.Y)
		pos, err := g.Position()
		require.NoError(t, err)
		rel, err := g.RelativePosition()
		require.NoError(t, err)
		require.Equal(t, rel, pos)
	}
}

func TestSetPositionReadAfterWrite(t *testing.T) {
	f := newFixture(t)
	parent := f.object(t, "parent", 100, 100)
	g := f.object(t, "child", 0, 0)
	require.NoError(t, g.SetParent(parent))

	v := common.Vec(1.125, -9.5)
	require.NoError(t, g.SetPosition(v))

	rel, err := g.RelativePosition()
	require.NoError(t, err)
	require.Equal(t, v, rel)
	require.True(t, g.HasParent())
}

func TestChildPositionAddsParent(t *testing.T) {
	f := newFixture(t)
	parent := f.object(t, "parent", 10, 10)
	child := f.object(t, "child", 5, 0)

	require.NoError(t, child.SetParent(parent))

	pos, err := child.Position()
	require.NoError(t, err)
	require.Equal(t, common.Vec(15, 10), pos)

	got, ok := child.Parent()
	require.True(t, ok)
	require.Same(t, parent, got)
	require.Equal(t, []*GameObject{child}, parent.Children())
}

func TestPositionIsTransitive(t *testing.T) {
	f := newFixture(t)
	chain := []*GameObject{f.object(t, "root", 1, 2)}
	for i := 1; i < 6; i++ {
		g := f.object(t, "link", float64(i), float64(-i))
		require.NoError(t, g.SetParent(chain[i-1]))
		chain = append(chain, g)
	}

	for i := 1; i < len(chain); i++ {
		parentPos, err := chain[i-1].Position()
		require.NoError(t, err)
		rel, err := chain[i].RelativePosition()
		require.NoError(t, err)
		pos, err := chain[i].Position()
		require.NoError(t, err)
		require.Equal(t, parentPos.Add(rel), pos)
	}

	pos, _ := chain[len(chain)-1].Position()
	require.Equal(t, common.Vec(16, -13), pos)

	comp, ok := GetComponent(chain[len(chain)-1], component.PositionComponent.Kind())
	require.True(t, ok)
	require.Equal(t, pos, comp.World())
}

func TestParentingIsReversible(t *testing.T) {
	f := newFixture(t)
	parent := f.object(t, "parent", 40, -2)
	child := f.object(t, "child", 3, 3)

	require.NoError(t, child.SetParent(parent))
	require.NoError(t, child.RemoveParent())

	pos, err := child.Position()
	require.NoError(t, err)
	rel, _ := child.RelativePosition()
	require.Equal(t, rel, pos)
	require.False(t, child.HasParent())

	comp, _ := GetComponent(child, component.PositionComponent.Kind())
	require.Nil(t, comp.ParentPosition())
}

func TestRemoveParentWithoutParentIsSoft(t *testing.T) {
	f := newFixture(t)
	g := f.object(t, "orphan", 0, 0)

	err := g.RemoveParent()
	require.ErrorIs(t, err, ErrNoParent)
	require.Equal(t, SeveritySoft, SeverityOf(err))
	require.False(t, IsHalting(err))
	require.Equal(t, 1, f.warnings())
	require.Empty(t, f.halts)
}

func TestSetParentRejectsCycles(t *testing.T) {
	f := newFixture(t)
	a := f.object(t, "a", 1, 0)
	b := f.object(t, "b", 1, 0)
	c := f.object(t, "c", 1, 0)
	require.NoError(t, b.SetParent(a))
	require.NoError(t, c.SetParent(b))

	cases := []struct {
		name   string
		child  *GameObject
		parent *GameObject
	}{
		{"self", a, a},
		{"direct", a, b},
		{"indirect", a, c},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.child.SetParent(tc.parent)
			require.ErrorIs(t, err, ErrParentCycle)
			require.False(t, a.HasParent())
		})
	}

	pos, err := c.Position()
	require.NoError(t, err)
	require.Equal(t, common.Vec(3, 0), pos)
}

func TestReparentMovesBackReference(t *testing.T) {
	f := newFixture(t)
	first := f.object(t, "first", 10, 0)
	second := f.object(t, "second", 0, 20)
	child := f.object(t, "child", 1, 1)

	require.NoError(t, child.SetParent(first))
	require.NoError(t, child.SetParent(second))

	pos, err := child.Position()
	require.NoError(t, err)
	require.Equal(t, common.Vec(1, 21), pos)
	require.Empty(t, first.Children())

	comp, _ := GetComponent(child, component.PositionComponent.Kind())
	require.Equal(t, common.Vec(1, 21), comp.World())
}

func TestParentWithoutPositionDegradesToZero(t *testing.T) {
	f := newFixture(t)
	parent := f.object(t, "hollow", 50, 50)
	child := f.object(t, "child", 5, 6)

	// Simulate a parent whose Position was dropped behind the object's back.
	require.True(t, ecs.Remove(f.session.World(), parent.Entity(), component.PositionComponent.Kind()))

	err := child.SetParent(parent)
	require.ErrorIs(t, err, ErrNoParentPosition)
	require.True(t, child.HasParent())

	require.NotPanics(t, func() {
		pos, err := child.Position()
		require.ErrorIs(t, err, ErrNoParentPosition)
		require.Equal(t, common.Vec(5, 6), pos)
	})
}

func TestMissingOwnPositionIsSoft(t *testing.T) {
	f := newFixture(t)
	g := f.object(t, "broken", 1, 1)
	require.True(t, ecs.Remove(f.session.World(), g.Entity(), component.PositionComponent.Kind()))

	rel, err := g.RelativePosition()
	require.ErrorIs(t, err, ErrNoPosition)
	require.Equal(t, common.Zero, rel)

	require.ErrorIs(t, g.SetPosition(common.Vec(1, 2)), ErrNoPosition)

	pos, err := g.Position()
	require.ErrorIs(t, err, ErrNoPosition)
	require.Equal(t, common.Zero, pos)
	require.Empty(t, f.halts)
}

func TestDestroyedParentIsDetectable(t *testing.T) {
	f := newFixture(t)
	parent := f.object(t, "parent", 10, 10)
	child := f.object(t, "child", 2, 3)
	require.NoError(t, child.SetParent(parent))

	require.NoError(t, f.session.DestroyGameObject(parent))
	require.True(t, parent.Destroyed())

	// the freed slot is reused; the stale link must not resolve to it
	reuse := f.object(t, "reuse", 1000, 1000)
	require.Equal(t, parent.Entity().ID(), reuse.Entity().ID())

	pos, err := child.Position()
	require.ErrorIs(t, err, ErrDanglingParent)
	require.Equal(t, common.Vec(2, 3), pos)
	require.True(t, child.HasParent())

	_, ok := child.Parent()
	require.False(t, ok)

	require.NoError(t, child.RemoveParent())
	_, err = child.Position()
	require.NoError(t, err)
}

func TestDestroyedObjectRejectsOperations(t *testing.T) {
	f := newFixture(t)
	g := f.object(t, "gone", 1, 1)
	require.NoError(t, f.session.DestroyGameObject(g))

	require.ErrorIs(t, f.session.DestroyGameObject(g), ErrDestroyed)
	_, err := g.Position()
	require.ErrorIs(t, err, ErrDestroyed)
	require.ErrorIs(t, g.SetPosition(common.Zero), ErrDestroyed)
	_, ok := GetComponent(g, component.PositionComponent.Kind())
	require.False(t, ok)
	require.False(t, f.session.World().IsAlive(g.Entity()))
	require.Equal(t, 0, f.session.Len())
}

func TestAddForceAccumulates(t *testing.T) {
	f := newFixture(t)
	g := f.object(t, "mover", 0, 0)
	vel, err := AddComponent(g, component.VelocityComponent.Kind(), &component.Velocity{})
	require.NoError(t, err)
	require.NotNil(t, vel)

	v1, v2 := common.Vec(1, 2), common.Vec(-4, 0.5)
	require.NoError(t, g.AddForce(v1))
	require.NoError(t, g.AddForceXY(v2.X, v2.Y))

	force, err := g.Force()
	require.NoError(t, err)
	require.Equal(t, v1.Add(v2), force)

	require.NoError(t, g.ResetForce())
	force, _ = g.Force()
	require.Equal(t, common.Zero, force)
}

func TestForceWithoutVelocityHalts(t *testing.T) {
	cases := []struct {
		name string
		call func(g *GameObject) error
	}{
		{"add", func(g *GameObject) error { return g.AddForce(common.Vec(1, 1)) }},
		{"add_xy", func(g *GameObject) error { return g.AddForceXY(1, 1) }},
		{"reset", func(g *GameObject) error { return g.ResetForce() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			g := f.object(t, "static", 0, 0)

			err := tc.call(g)
			require.ErrorIs(t, err, ErrNoVelocity)
			require.True(t, IsHalting(err))
			require.Len(t, f.halts, 1)
			require.Equal(t, g.Entity(), f.halts[0].Entity)
			require.Equal(t, 1, f.logs.FilterMessage("game object operation halted").Len())
		})
	}
}

func TestAddComponentNil(t *testing.T) {
	f := newFixture(t)
	g := f.object(t, "target", 0, 0)
	before := f.session.World().Components(g.Entity())

	var sprite *component.SpriteRenderer
	got, err := AddComponent(g, component.SpriteRendererComponent.Kind(), sprite)

	require.Nil(t, got)
	require.ErrorIs(t, err, ErrNilComponent)
	require.Equal(t, SeveritySoft, SeverityOf(err))
	require.Equal(t, before, f.session.World().Components(g.Entity()))
	require.Equal(t, 1, f.warnings())
}

type velocitySystem struct{}

func (velocitySystem) Update(*ecs.World) {}

func (velocitySystem) Requires() []component.ComponentID {
	return []component.ComponentID{component.PositionComponent.Kind().ID(), component.VelocityComponent.Kind().ID()}
}

func TestAddAndRemoveComponentRefreshSystems(t *testing.T) {
	f := newFixture(t)
	sys := velocitySystem{}
	f.session.World().AddSystem(sys)

	g := f.object(t, "mover", 0, 0)
	require.Empty(t, f.session.World().Members(sys))

	vel := &component.Velocity{}
	got, err := AddComponent(g, component.VelocityComponent.Kind(), vel)
	require.NoError(t, err)
	require.Same(t, vel, got)
	require.Equal(t, []ecs.Entity{g.Entity()}, f.session.World().Members(sys))

	require.NoError(t, RemoveComponent(g, component.VelocityComponent.Kind()))
	require.Empty(t, f.session.World().Members(sys))

	require.ErrorIs(t, RemoveComponent(g, component.VelocityComponent.Kind()), ErrNoComponent)
	require.ErrorIs(t, RemoveComponent(g, component.PositionComponent.Kind()), ErrPositionRequired)
	require.True(t, HasComponent(g, component.PositionComponent.Kind()))
}

func TestReplacingPositionKeepsHierarchy(t *testing.T) {
	f := newFixture(t)
	parent := f.object(t, "parent", 10, 0)
	child := f.object(t, "child", 1, 0)
	require.NoError(t, child.SetParent(parent))

	_, err := AddComponent(parent, component.PositionComponent.Kind(), component.NewPosition(20, 0))
	require.NoError(t, err)

	comp, _ := GetComponent(child, component.PositionComponent.Kind())
	require.Equal(t, common.Vec(21, 0), comp.World())
}

func TestTagsAndLookup(t *testing.T) {
	f := newFixture(t)
	a := f.object(t, "a", 0, 0)
	b := f.object(t, "b", 0, 0)
	a.SetTag("enemy")
	b.SetTag("enemy")
	f.object(t, "c", 0, 0).SetTag("player")

	require.Equal(t, "enemy", a.Tag())
	require.Len(t, f.session.FindWithTag("enemy"), 2)
	require.Empty(t, f.session.FindWithTag("boss"))

	found, ok := f.session.FindByName("b")
	require.True(t, ok)
	require.Same(t, b, found)
}

func TestChangeAnimation(t *testing.T) {
	f := newFixture(t)
	g := f.object(t, "walker", 0, 0)

	require.ErrorIs(t, g.ChangeAnimation("walk"), ErrNoAnimation)

	anim := &component.Animation{Defs: map[string]component.AnimationDef{"walk": {FrameCount: 2, FPS: 8}}}
	_, err := AddComponent(g, component.AnimationComponent.Kind(), anim)
	require.NoError(t, err)

	require.NoError(t, g.ChangeAnimation("walk"))
	require.Equal(t, "walk", anim.Current)
	require.True(t, errors.Is(g.ChangeAnimation("fly"), component.ErrUnknownAnimation))
}

func TestShowInfo(t *testing.T) {
	f := newFixture(t)
	parent := f.object(t, "parent", 1, 1)
	g := f.object(t, "probe", 2, 2)
	g.SetTag("debug")
	require.NoError(t, g.SetParent(parent))
	_, err := AddComponent(g, component.VelocityComponent.Kind(), &component.Velocity{})
	require.NoError(t, err)

	require.NoError(t, g.ShowInfo())
	require.Len(t, f.presenter.shown, 1)

	info := f.presenter.shown[0]
	require.Equal(t, g.Entity(), info.Entity)
	require.Equal(t, "parent", info.Parent)
	require.Len(t, info.Components, 2)
	require.Equal(t, common.Vec(3, 3), info.Position)
	require.Equal(t, common.Vec(2, 2), info.Relative)
	require.Contains(t, info.String(), "Components: 2")
	require.Contains(t, info.String(), "Tag: debug")
}

func TestDefaultPresenterLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewSession(nil, WithLogger(zap.New(core)))
	g, err := s.CreateGameObject("logged")
	require.NoError(t, err)

	require.NoError(t, g.ShowInfo())
	require.Equal(t, 1, logs.FilterMessage("game object info").Len())
}

func TestSessionCloseDestroysEverything(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 4; i++ {
		f.object(t, "tmp", 0, 0)
	}
	f.session.Close()
	require.Equal(t, 0, f.session.Len())
	require.Equal(t, 0, f.session.World().Len())
}

func TestForeignParentRejected(t *testing.T) {
	f1 := newFixture(t)
	f2 := newFixture(t)
	a := f1.object(t, "a", 0, 0)
	b := f2.object(t, "b", 0, 0)

	require.ErrorIs(t, a.SetParent(b), ErrForeignObject)
	require.ErrorIs(t, a.SetParent(nil), ErrNilParent)
	require.ErrorIs(t, f1.session.DestroyGameObject(b), ErrForeignObject)
	require.False(t, a.HasParent())
}
