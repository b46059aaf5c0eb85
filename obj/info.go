package obj

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/component"
	"go.uber.org/zap"
)

// Info is a diagnostic snapshot of one GameObject.
type Info struct {
	Entity     ecs.Entity
	Instance   uuid.UUID
	Name       string
	Tag        string
	Parent     string
	Components []string
	Position   common.Vector2D
	Relative   common.Vector2D
}

func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "GameObject %q\n", i.Name)
	fmt.Fprintf(&b, "Entity: %d\n", i.Entity.ID())
	fmt.Fprintf(&b, "Instance: %s\n", i.Instance)
	if i.Tag != "" {
		fmt.Fprintf(&b, "Tag: %s\n", i.Tag)
	}
	if i.Parent != "" {
		fmt.Fprintf(&b, "Parent: %s\n", i.Parent)
	}
	fmt.Fprintf(&b, "Components: %d (%s)\n", len(i.Components), strings.Join(i.Components, ", "))
	fmt.Fprintf(&b, "Position: %s (local %s)", i.Position, i.Relative)
	return b.String()
}

// Info collects the entity id, components and positions of g.
func (g *GameObject) Info() (Info, error) {
	if err := g.check("Info"); err != nil {
		return Info{}, err
	}
	info := Info{
		Entity:   g.entity,
		Instance: g.instance,
		Name:     g.name,
		Tag:      g.tag,
	}
	if p, ok := g.Parent(); ok {
		info.Parent = p.name
	}
	for _, id := range g.session.world.Components(g.entity) {
		info.Components = append(info.Components, component.KindName(id))
	}
	rel, err := g.RelativePosition()
	info.Relative = rel
	pos, posErr := g.Position()
	info.Position = pos
	if err == nil {
		err = posErr
	}
	return info, err
}

// ShowInfo hands a snapshot of g to the session presenter.
func (g *GameObject) ShowInfo() error {
	info, err := g.Info()
	if g.destroyed {
		return err
	}
	g.session.presenter.Present(info)
	return err
}

// logPresenter is the default presenter of a session.
type logPresenter struct {
	logger *zap.Logger
}

func (p logPresenter) Present(info Info) {
	p.logger.Info("game object info",
		zap.String("object", info.Name),
		zap.Uint32("entity", info.Entity.ID()),
		zap.Int("components", len(info.Components)),
		zap.Stringer("position", info.Position),
	)
}
