package component

import "github.com/milk9111/poles/common"

// maxHierarchyDepth bounds World walks. Parent links are acyclic when set
// through GameObject.SetParent; the bound only stops a corrupted chain.
const maxHierarchyDepth = 4096

// Position is the local coordinate of an entity plus an optional
// back-reference to its parent's Position. The back-reference is owned by
// whoever sets it; Position never caches a resolved world value.
type Position struct {
	Local  common.Vector2D
	parent *Position
}

var PositionComponent = NewComponent[Position]()

func NewPosition(x, y float64) *Position {
	return &Position{Local: common.Vec(x, y)}
}

func (p *Position) LocalPosition() common.Vector2D {
	return p.Local
}

func (p *Position) SetPosition(v common.Vector2D) {
	p.Local = v
}

func (p *Position) SetParentPosition(parent *Position) {
	p.parent = parent
}

func (p *Position) RemoveParentPosition() {
	p.parent = nil
}

// ParentPosition returns the parent back-reference, or nil.
func (p *Position) ParentPosition() *Position {
	return p.parent
}

// World folds Local over the back-reference chain.
func (p *Position) World() common.Vector2D {
	var out common.Vector2D
	for cur, depth := p, 0; cur != nil && depth < maxHierarchyDepth; cur, depth = cur.parent, depth+1 {
		out = out.Add(cur.Local)
	}
	return out
}

// ParentWorld returns the world position of the parent, or zero.
func (p *Position) ParentWorld() common.Vector2D {
	if p.parent == nil {
		return common.Zero
	}
	return p.parent.World()
}
