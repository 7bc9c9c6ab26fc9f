package project

import (
	"github.com/dolthub/swiss"
)

// Project is the sprite container: every target of the .sb3 file, keyed by
// sprite name. Order of the underlying targets array (project.json) is
// preserved separately in Order, since the registry itself has no stable
// iteration order.
type Project struct {
	sprites *swiss.Map[string, *Sprite]

	// Order lists sprite names in the order their targets appeared in
	// project.json, the order hat and broadcast dispatch enumerate sprites
	// in.
	Order []string
}

// New returns an empty project container with capacity for size sprites.
func New(size int) *Project {
	return &Project{sprites: swiss.NewMap[string, *Sprite](uint32(size))}
}

// Add registers a sprite, appending its name to Order.
func (p *Project) Add(s *Sprite) {
	p.sprites.Put(s.Name, s)
	p.Order = append(p.Order, s.Name)
}

// Sprite returns the sprite registered under name, if any.
func (p *Project) Sprite(name string) (*Sprite, bool) {
	return p.sprites.Get(name)
}

// Sprites returns every sprite in Order.
func (p *Project) Sprites() []*Sprite {
	out := make([]*Sprite, 0, len(p.Order))
	for _, name := range p.Order {
		if s, ok := p.sprites.Get(name); ok {
			out = append(out, s)
		}
	}
	return out
}
