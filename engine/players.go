package engine

import "sync"

// Player is a participant that may own one spawned character at a time.
type Player struct {
	Name string

	// CharacterAdded fires after a character is spawned for the player.
	CharacterAdded *Signal[*Character]
	// CharacterRemoving fires before the player's character is despawned.
	CharacterRemoving *Signal[*Character]

	mu        sync.Mutex
	character *Character
}

func newPlayer(name string) *Player {
	return &Player{
		Name:              name,
		CharacterAdded:    NewSignal[*Character](),
		CharacterRemoving: NewSignal[*Character](),
	}
}

// Character returns the currently spawned character, or nil.
func (p *Player) Character() *Character {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.character
}

func (p *Player) setCharacter(c *Character) {
	p.mu.Lock()
	p.character = c
	p.mu.Unlock()
}

// Players tracks the players known to a runtime.
type Players struct {
	mu      sync.Mutex
	local   *Player
	players map[string]*Player
}

func newPlayers() *Players {
	return &Players{players: make(map[string]*Player)}
}

// LocalPlayer returns the player this client runs for. It is nil on a
// server runtime.
func (ps *Players) LocalPlayer() *Player {
	if ps == nil {
		return nil
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.local
}

// Add registers a player, returning the existing one if the name is taken.
func (ps *Players) Add(name string) *Player {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if p, ok := ps.players[name]; ok {
		return p
	}
	p := newPlayer(name)
	ps.players[name] = p
	return p
}

func (ps *Players) Get(name string) (*Player, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p, ok := ps.players[name]
	return p, ok
}

func (ps *Players) setLocal(p *Player) {
	ps.mu.Lock()
	ps.local = p
	ps.mu.Unlock()
}
