// Package runner coordinates script execution: one worker goroutine owns the
// interpreter state, newer run requests supersede older ones, a file watcher
// triggers reloads, and an animation driver steps time-driven controls.
package runner

import (
	"context"
	"errors"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/ahearne/lightcone/lcode"
	"github.com/ahearne/lightcone/store"
	"github.com/ahearne/lightcone/vm"
)

var log = commonlog.GetLogger("runner")

// RequestKind distinguishes the two pass flavors.
type RequestKind int

const (
	// Render re-executes the loaded program, preserving reactive controls
	// and committed sticky state. Control changes and animation frames use
	// this.
	Render RequestKind = iota
	// Reload re-reads the program file and tears the reactive tier down
	// before executing. File changes use this.
	Reload
)

func (k RequestKind) String() string {
	if k == Reload {
		return "reload"
	}
	return "render"
}

// Loader produces the program to execute. It is called on the worker
// goroutine for every reload pass and honors cancellation.
type Loader func(ctx context.Context) (*vm.Program, error)

type request struct {
	kind  RequestKind
	reply chan result // nil for fire-and-forget submissions
}

type result struct {
	list *lcode.List
	err  error
}

// Coordinator serializes all interpreter access through a single worker
// goroutine. At most one pass executes at a time; a new submission
// supersedes any queued request and cancels the in-flight pass, whose staged
// sticky state is then discarded.
type Coordinator struct {
	loader   Loader
	resolver lcode.Resolver
	db       *store.DB // nil disables sticky persistence
	onResult func(*lcode.List, error)

	syms *vm.SymTab
	reg  *vm.ControlRegistry
	prog *vm.Program

	requests chan request
	quit     chan struct{}
	wg       sync.WaitGroup

	mu     sync.Mutex
	cancel context.CancelFunc
	seeded bool
}

// NewCoordinator creates a coordinator and starts its worker goroutine.
// onResult receives the command list (or error) of every completed pass;
// superseded passes produce no result. It may be nil.
func NewCoordinator(loader Loader, resolver lcode.Resolver, db *store.DB, onResult func(*lcode.List, error)) *Coordinator {
	c := &Coordinator{
		loader:   loader,
		resolver: resolver,
		db:       db,
		onResult: onResult,
		syms:     vm.NewSymTab(),
		reg:      vm.NewControlRegistry(),
		requests: make(chan request, 1),
		quit:     make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

// Submit queues a pass, superseding any queued request and cancelling the
// in-flight one. When a queued reload would be displaced by a render, the
// reload wins: a reload subsumes a render, never the other way around.
func (c *Coordinator) Submit(kind RequestKind) {
	c.cancelInFlight()
	for {
		select {
		case c.requests <- request{kind: kind}:
			return
		default:
		}
		select {
		case stale := <-c.requests:
			if stale.kind == Reload {
				kind = Reload
			}
			if stale.reply != nil {
				stale.reply <- result{err: context.Canceled}
			}
		default:
		}
	}
}

// SubmitForControl queues the pass a control change calls for: a reload when
// the control asks to restart the diagram, a render otherwise.
func (c *Coordinator) SubmitForControl(ctl *vm.Control) {
	if ctl.ResetOnChange() {
		c.Submit(Reload)
	} else {
		c.Submit(Render)
	}
}

// RunSync executes one pass and returns its command list, waiting for the
// worker. A later submission can still supersede it.
func (c *Coordinator) RunSync(kind RequestKind) (*lcode.List, error) {
	reply := make(chan result, 1)
	c.requests <- request{kind: kind, reply: reply}
	r := <-reply
	return r.list, r.err
}

// Controls returns the reactive controls of the loaded program, in creation
// order, for the UI layer to present.
func (c *Coordinator) Controls() []*vm.Control {
	return c.reg.Controls()
}

// Stop cancels any in-flight pass and shuts the worker down.
func (c *Coordinator) Stop() {
	close(c.quit)
	c.cancelInFlight()
	c.wg.Wait()
}

func (c *Coordinator) cancelInFlight() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Coordinator) setCancel(cancel context.CancelFunc) {
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
}

func (c *Coordinator) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.quit:
			return
		case req := <-c.requests:
			ctx, cancel := context.WithCancel(context.Background())
			c.setCancel(cancel)
			list, err := c.runPass(ctx, req.kind)
			c.setCancel(nil)
			cancel()

			if req.reply != nil {
				req.reply <- result{list: list, err: err}
				continue
			}
			if errors.Is(err, context.Canceled) {
				log.Debugf("%s pass superseded", req.kind)
				continue
			}
			if c.onResult != nil {
				c.onResult(list, err)
			}
		}
	}
}

// runPass executes one pass on the worker goroutine. Sticky staged state
// commits only on success; a failed or cancelled pass leaves the durable
// tier exactly as the previous successful pass did.
func (c *Coordinator) runPass(ctx context.Context, kind RequestKind) (*lcode.List, error) {
	if kind == Reload || c.prog == nil {
		prog, err := c.loader(ctx)
		if err != nil {
			return nil, err
		}
		c.prog = prog
		c.syms.ResetReactive()
		c.reg.Reset()
		log.Infof("loaded program %q (%d instructions)", prog.Name, len(prog.Code))
	}
	if err := c.seedSticky(); err != nil {
		return nil, err
	}

	c.syms.BeginPass()
	builder := lcode.NewBuilder(c.resolver)
	interp := vm.NewInterp(c.prog, c.syms, c.reg, builder)
	if err := interp.Run(ctx); err != nil {
		c.syms.DiscardPass()
		return nil, err
	}
	c.syms.CommitSticky()
	if c.db != nil {
		if err := c.db.SaveSticky(c.syms.StickySnapshot()); err != nil {
			log.Errorf("%s", err.Error())
		}
	}
	return builder.Take(), nil
}

// seedSticky loads persisted sticky state before the first pass.
func (c *Coordinator) seedSticky() error {
	if c.seeded || c.db == nil {
		c.seeded = true
		return nil
	}
	m, err := c.db.LoadSticky()
	if err != nil {
		return err
	}
	c.syms.SeedSticky(m)
	c.seeded = true
	return nil
}
