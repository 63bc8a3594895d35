package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

// InWater marks a body currently overlapping a water volume.
type InWater struct {
	VolumeID int
}

var InWaterComponent = NewComponent[InWater]()
