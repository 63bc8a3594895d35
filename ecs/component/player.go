package component

// Player links a character entity to the player that owns it.
type Player struct {
	Name string
}

var PlayerComponent = NewComponent[Player]()
