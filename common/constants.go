package common

const (
	BaseWidth  = 1280
	BaseHeight = 720

	// TPS is the fixed update rate; systems integrate with 1/TPS.
	TPS = 60
)

// FixedStep is the duration of one update tick in seconds.
const FixedStep = 1.0 / TPS
