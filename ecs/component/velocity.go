package component

import "github.com/milk9111/poles/common"

// Velocity accumulates the force fed to the movement and physics systems.
type Velocity struct {
	Force common.Vector2D
}

var VelocityComponent = NewComponent[Velocity]()

func (v *Velocity) AddVelocity(delta common.Vector2D) {
	v.Force = v.Force.Add(delta)
}

func (v *Velocity) ResetVelocity() {
	v.Force = common.Zero
}
