package system

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/poles/common"
	"github.com/milk9111/poles/ecs"
	"github.com/milk9111/poles/ecs/component"
	"github.com/milk9111/poles/obj"
)

// DrawItem is one resolved draw call.
type DrawItem struct {
	Entity ecs.Entity
	Layer  int
	Screen common.Vector2D
	Sprite *component.SpriteRenderer
	Text   *component.TextRenderer
}

// RenderSystem draws sprites and text at each object's screen-space
// position, ordered by RenderLayer then entity.
type RenderSystem struct {
	session *obj.Session
}

func NewRenderSystem(s *obj.Session) *RenderSystem {
	return &RenderSystem{session: s}
}

func (r *RenderSystem) Update(*ecs.World) {}

// DrawList resolves what would be drawn this frame.
func (r *RenderSystem) DrawList(w *ecs.World) []DrawItem {
	var items []DrawItem
	for _, e := range w.Query(component.PositionComponent.Kind().ID()) {
		sprite, hasSprite := ecs.Get(w, e, component.SpriteRendererComponent.Kind())
		label, hasText := ecs.Get(w, e, component.TextRendererComponent.Kind())
		if !hasSprite && !hasText {
			continue
		}
		g, ok := r.session.ObjectFor(e)
		if !ok {
			continue
		}
		pos, _ := g.PositionPerspective()

		item := DrawItem{Entity: e, Screen: pos}
		if layer, ok := ecs.Get(w, e, component.RenderLayerComponent.Kind()); ok {
			item.Layer = layer.Index
		}
		if hasSprite {
			item.Sprite = sprite
		}
		if hasText {
			item.Text = label
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Layer != items[j].Layer {
			return items[i].Layer < items[j].Layer
		}
		return items[i].Entity.ID() < items[j].Entity.ID()
	})
	return items
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	for _, item := range r.DrawList(w) {
		if item.Sprite != nil {
			drawSprite(screen, item.Sprite, item.Screen)
		}
		if item.Text != nil {
			drawText(screen, item.Text, item.Screen)
		}
	}
}

func drawSprite(screen *ebiten.Image, s *component.SpriteRenderer, at common.Vector2D) {
	img := s.Frame()
	if img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-s.OriginX, -s.OriginY)
	if s.FacingLeft {
		op.GeoM.Scale(-1, 1)
		op.GeoM.Translate(float64(img.Bounds().Dx()), 0)
	}
	op.GeoM.Translate(at.X, at.Y)
	screen.DrawImage(img, op)
}

func drawText(screen *ebiten.Image, t *component.TextRenderer, at common.Vector2D) {
	if t.Text == "" {
		return
	}
	face := t.Face
	if face == nil {
		face = component.DefaultFace
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(at.X, at.Y)
	if t.Color != nil {
		op.ColorScale.ScaleWithColor(t.Color)
	}
	text.Draw(screen, t.Text, face, op)
}
