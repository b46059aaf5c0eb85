package obj

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/component"
	"go.uber.org/zap"
)

// HaltHandler receives halting errors as they are reported.
type HaltHandler func(err *Error)

// Presenter displays diagnostic snapshots requested through ShowInfo.
type Presenter interface {
	Present(info Info)
}

type Option func(*Session)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithHaltHandler(h HaltHandler) Option {
	return func(s *Session) {
		s.onHalt = h
	}
}

func WithPresenter(p Presenter) Option {
	return func(s *Session) {
		s.presenter = p
	}
}

// Session is the game-session context. It is the only factory for
// GameObjects, owns the arena they live in, and carries the camera and the
// reporting channels that GameObject operations use.
type Session struct {
	world     *ecs.World
	objects   arena
	byEntity  map[ecs.Entity]Handle
	camera    CameraAccessor
	logger    *zap.Logger
	onHalt    HaltHandler
	presenter Presenter
}

func NewSession(w *ecs.World, opts ...Option) *Session {
	if w == nil {
		w = ecs.NewWorld()
	}
	s := &Session{
		world:    w,
		byEntity: make(map[ecs.Entity]Handle),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.presenter == nil {
		s.presenter = logPresenter{logger: s.logger}
	}
	return s
}

func (s *Session) World() *ecs.World {
	return s.world
}

func (s *Session) Logger() *zap.Logger {
	return s.logger
}

// CreateGameObject allocates an entity, attaches its Position and refreshes
// system matching.
func (s *Session) CreateGameObject(name string) (*GameObject, error) {
	e := s.world.CreateEntity()
	if err := ecs.Add(s.world, e, component.PositionComponent.Kind(), &component.Position{}); err != nil {
		s.world.DestroyEntity(e)
		return nil, fmt.Errorf("create game object %q: attach position: %w", name, err)
	}
	s.world.Refresh(e)

	g := &GameObject{
		session:  s,
		entity:   e,
		instance: uuid.New(),
		name:     name,
	}
	g.handle = s.objects.insert(g)
	s.byEntity[e] = g.handle

	s.logger.Debug("game object created",
		zap.String("object", name),
		zap.Stringer("entity", e),
		zap.Stringer("instance", g.instance),
	)
	return g, nil
}

// DestroyGameObject releases g and its entity. Children keep their link to g
// and report ErrDanglingParent until they are reparented or RemoveParent is
// called; their Position back-references are cleared here.
func (s *Session) DestroyGameObject(g *GameObject) error {
	if err := s.owns("DestroyGameObject", g); err != nil {
		return err
	}
	for _, child := range g.Children() {
		if pos, ok := ecs.Get(s.world, child.entity, component.PositionComponent.Kind()); ok {
			pos.RemoveParentPosition()
		}
		s.logger.Warn("parent destroyed with live child",
			zap.String("object", child.name),
			zap.String("parent", g.name),
		)
	}
	if oc, ok := s.camera.(objectCamera); ok && oc.handle == g.handle {
		s.camera = nil
	}

	s.objects.remove(g.handle)
	delete(s.byEntity, g.entity)
	s.world.DestroyEntity(g.entity)
	g.destroyed = true

	s.logger.Debug("game object destroyed",
		zap.String("object", g.name),
		zap.Stringer("entity", g.entity),
	)
	return nil
}

// Close destroys every live object.
func (s *Session) Close() {
	for _, g := range s.Objects() {
		_ = s.DestroyGameObject(g)
	}
}

// Lookup resolves a handle to its live object.
func (s *Session) Lookup(h Handle) (*GameObject, bool) {
	return s.objects.get(h)
}

// ObjectFor returns the GameObject owning entity e.
func (s *Session) ObjectFor(e ecs.Entity) (*GameObject, bool) {
	h, ok := s.byEntity[e]
	if !ok {
		return nil, false
	}
	return s.objects.get(h)
}

// Objects returns live objects in creation-slot order.
func (s *Session) Objects() []*GameObject {
	out := make([]*GameObject, 0, s.objects.live)
	s.objects.each(func(g *GameObject) { out = append(out, g) })
	return out
}

func (s *Session) Len() int {
	return s.objects.live
}

func (s *Session) FindWithTag(tag string) []*GameObject {
	var out []*GameObject
	s.objects.each(func(g *GameObject) {
		if g.tag == tag {
			out = append(out, g)
		}
	})
	return out
}

// FindByName returns the first live object with the given name.
func (s *Session) FindByName(name string) (*GameObject, bool) {
	var found *GameObject
	s.objects.each(func(g *GameObject) {
		if found == nil && g.name == name {
			found = g
		}
	})
	return found, found != nil
}

func (s *Session) owns(op string, g *GameObject) error {
	if g == nil {
		return s.report(op, nil, SeveritySoft, ErrNilObject)
	}
	if g.session != s {
		return s.report(op, g, SeveritySoft, ErrForeignObject)
	}
	if g.destroyed {
		return s.report(op, g, SeveritySoft, ErrDestroyed)
	}
	return nil
}

// report logs err and, for halting errors, forwards it to the halt handler.
// It returns the structured error so callers can return it directly.
func (s *Session) report(op string, g *GameObject, sev Severity, err error) error {
	oe := &Error{Op: op, Severity: sev, Err: err}
	fields := []zap.Field{
		zap.String("op", op),
		zap.Stringer("severity", sev),
		zap.Error(err),
	}
	if g != nil {
		oe.Object = g.name
		oe.Entity = g.entity
		fields = append(fields,
			zap.String("object", g.name),
			zap.Stringer("entity", g.entity),
			zap.Stringer("instance", g.instance),
		)
	}

	if sev == SeverityHalting {
		s.logger.Error("game object operation halted", fields...)
		if s.onHalt != nil {
			s.onHalt(oe)
		}
		return oe
	}
	s.logger.Warn("game object operation failed", fields...)
	return oe
}
