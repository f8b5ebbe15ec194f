package render

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
)

// DefaultPlayerArgs are passed to mpv before the asset path.
var DefaultPlayerArgs = []string{"--fs", "--loop-file=no", "--no-terminal", "--no-audio"}

// Player plays assets by running an external media player, one process per
// Play call. Overlays and spectrum frames are not its concern and are
// ignored.
type Player struct {
	ctx     context.Context
	command string
	args    []string
	onError func(path string, err error)
	wg      sync.WaitGroup
}

// NewPlayer returns a Player that runs command with args followed by the
// asset path. Cancelling ctx kills running players. onError, when non-nil,
// receives start failures and non-zero exits that were not caused by
// cancellation; it may be called from any goroutine.
func NewPlayer(ctx context.Context, command string, args []string, onError func(path string, err error)) *Player {
	return &Player{
		ctx:     ctx,
		command: command,
		args:    append([]string(nil), args...),
		onError: onError,
	}
}

// Play starts the player for path and returns immediately.
func (p *Player) Play(path string) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		args := append(append([]string(nil), p.args...), path)
		cmd := exec.CommandContext(p.ctx, p.command, args...)
		if err := cmd.Run(); err != nil && p.ctx.Err() == nil && p.onError != nil {
			p.onError(path, fmt.Errorf("render: %s %s: %w", p.command, path, err))
		}
	}()
}

func (p *Player) Show(Overlay) {}

func (p *Player) Spectrum([]float64) {}

// Wait blocks until every started player has exited.
func (p *Player) Wait() {
	p.wg.Wait()
}
