package runner

import (
	"sync"
	"time"

	"github.com/ahearne/lightcone/vm"
)

// Animator drives animate-kind controls: each tick advances every running
// animation by its step and submits a render pass. Frame stepping is
// deterministic; wall-clock time only decides when ticks happen, never how
// far a control moves.
type Animator struct {
	coord    *Coordinator
	interval time.Duration

	mu     sync.Mutex
	ticker *time.Ticker
	done   chan struct{}
}

// NewAnimator creates an animator running at the given frame rate.
func NewAnimator(coord *Coordinator, frameRate int) *Animator {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Animator{
		coord:    coord,
		interval: time.Second / time.Duration(frameRate),
	}
}

// Start begins ticking. Starting a running animator is a no-op. The animator
// stops itself once every animation reaches its terminal value; open-ended
// animations keep it running until Stop.
func (a *Animator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ticker != nil {
		return
	}
	a.ticker = time.NewTicker(a.interval)
	a.done = make(chan struct{})
	go a.loop(a.ticker, a.done)
}

// Stop halts ticking. Stopping a stopped animator is a no-op.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Animator) stopLocked() {
	if a.ticker == nil {
		return
	}
	a.ticker.Stop()
	close(a.done)
	a.ticker = nil
	a.done = nil
}

// Running reports whether the animator is ticking.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ticker != nil
}

func (a *Animator) loop(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !a.Step() {
				a.Stop()
				return
			}
		}
	}
}

// Step advances every animate control once and submits a render pass when
// anything moved. It returns false once all animations have finished. With
// no animate controls at all (the first pass has not completed yet, or the
// program has none) it keeps ticking so a later pass can pick up.
func (a *Animator) Step() bool {
	moved := false
	finished := true
	for _, ctl := range a.coord.Controls() {
		if ctl.Kind() != vm.ControlAnimate {
			continue
		}
		if !ctl.Advance() {
			finished = false
		}
		moved = true
	}
	if moved {
		a.coord.Submit(Render)
	}
	return !moved || !finished
}
