package component

// Transform mirrors a body's world position for rendering. World Y is up.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
