package component

import "github.com/jakecoffman/cp"

// WaterVolume is an axis-aligned region characters can swim in.
type WaterVolume struct {
	Bounds cp.BB
}

func (v *WaterVolume) Contains(p cp.Vector) bool {
	if v == nil {
		return false
	}
	return p.X >= v.Bounds.L && p.X <= v.Bounds.R && p.Y >= v.Bounds.B && p.Y <= v.Bounds.T
}

var WaterVolumeComponent = NewComponent[WaterVolume]()
