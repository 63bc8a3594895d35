package component

// DeferredTask runs Run once after Ticks update ticks.
type DeferredTask struct {
	Ticks int
	Run   func()
}

var DeferredTaskComponent = NewComponent[DeferredTask]()
