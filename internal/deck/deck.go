package deck

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// DefaultExtensions lists the asset file extensions recognised by Load.
var DefaultExtensions = []string{".gif", ".webp", ".mp4", ".avi", ".mov"}

// Deck maps trigger keywords to their draw piles. It is safe for concurrent
// use.
type Deck struct {
	mu    sync.Mutex
	piles map[string]*Pile
	rng   *rand.Rand
}

// New creates an empty deck that shuffles with rng.
func New(rng *rand.Rand) *Deck {
	return &Deck{
		piles: make(map[string]*Pile),
		rng:   rng,
	}
}

// NewRand returns the process-local generator used for shuffling. A zero
// seed draws a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Load scans dir one level deep: every sub-directory is a keyword and its
// files with a recognised extension are that keyword's assets. Hidden files
// are skipped, extensions compare case-insensitively, and keywords without
// assets are left out. If extensions is empty, DefaultExtensions is used.
func Load(dir string, extensions []string, rng *rand.Rand) (*Deck, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("deck: read %s: %w", dir, err)
	}

	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}

	d := New(rng)
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		assets, scanErr := scanAssets(filepath.Join(dir, entry.Name()), exts)
		if scanErr != nil {
			return nil, scanErr
		}
		if len(assets) > 0 {
			d.Add(entry.Name(), assets)
		}
	}
	return d, nil
}

func scanAssets(dir string, exts map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("deck: read %s: %w", dir, err)
	}
	var assets []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !exts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		assets = append(assets, filepath.Join(dir, name))
	}
	return assets, nil
}

// Add registers assets under keyword, replacing any existing pile.
func (d *Deck) Add(keyword string, assets []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(assets) == 0 {
		delete(d.piles, keyword)
		return
	}
	d.piles[keyword] = NewPile(assets, d.rng)
}

// Draw returns the next asset for keyword. Unknown keywords report false.
func (d *Deck) Draw(keyword string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.piles[keyword]
	if !ok {
		return "", false
	}
	return p.Draw()
}

// Assets returns a copy of the full asset set for keyword.
func (d *Deck) Assets(keyword string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.piles[keyword]; ok {
		return p.Assets()
	}
	return nil
}

// Keywords returns the known keywords in sorted order.
func (d *Deck) Keywords() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	keys := make([]string, 0, len(d.piles))
	for k := range d.piles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Size returns the number of assets registered for keyword.
func (d *Deck) Size(keyword string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.piles[keyword]; ok {
		return p.Size()
	}
	return 0
}
