// Package deck holds the per-keyword animation piles: shuffled
// draw-without-replacement pools that refill themselves on exhaustion.
package deck

import (
	"math/rand/v2"
	"slices"
)

// Pile is a shuffled draw pile over a fixed set of assets. Every asset is
// drawn once before any asset is drawn again. A Pile is not safe for
// concurrent use; Deck guards its piles with a mutex.
type Pile struct {
	all       []string
	remaining []string
	rng       *rand.Rand
}

// NewPile creates a shuffled pile over assets. The slice is copied.
func NewPile(assets []string, rng *rand.Rand) *Pile {
	p := &Pile{
		all: slices.Clone(assets),
		rng: rng,
	}
	p.refill("")
	return p
}

// Draw pops the next asset. When the pile runs empty it is refilled
// immediately, so the next Draw succeeds as long as the pile has any assets.
func (p *Pile) Draw() (string, bool) {
	if len(p.all) == 0 {
		return "", false
	}
	if len(p.remaining) == 0 {
		p.refill("")
	}

	last := len(p.remaining) - 1
	asset := p.remaining[last]
	p.remaining = p.remaining[:last]

	if len(p.remaining) == 0 {
		p.refill(asset)
	}
	return asset, true
}

// Size returns the number of distinct assets known to the pile.
func (p *Pile) Size() int {
	return len(p.all)
}

// Remaining returns how many assets are left before the next reshuffle.
func (p *Pile) Remaining() int {
	return len(p.remaining)
}

// Assets returns a copy of the full asset set.
func (p *Pile) Assets() []string {
	return slices.Clone(p.all)
}

// refill reshuffles the full set back into the pile. prev is the asset that
// was just drawn; it is never left on top when another choice exists.
func (p *Pile) refill(prev string) {
	p.remaining = append(p.remaining[:0], p.all...)
	p.rng.Shuffle(len(p.remaining), func(i, j int) {
		p.remaining[i], p.remaining[j] = p.remaining[j], p.remaining[i]
	})

	top := len(p.remaining) - 1
	if top > 0 && p.remaining[top] == prev {
		p.remaining[0], p.remaining[top] = p.remaining[top], p.remaining[0]
	}
}
