package runner

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahearne/lightcone/lcode"
	"github.com/ahearne/lightcone/store"
	"github.com/ahearne/lightcone/vm"
)

var plainResolver = &lcode.StaticResolver{Base: lcode.Style{Color: "black", LineWidth: 1, Opacity: 1}}

// speedProgram binds a range control v and draws an event at (v, v).
func speedProgram(t *testing.T) *vm.Program {
	t.Helper()
	b := vm.NewBuilder("speed")
	b.PushNum(0.5)
	b.PushNum(0)
	b.PushNum(0.9)
	b.PushNum(0.1)
	b.BindRange("v", "speed", false)
	b.FigBegin(vm.FigEvent)
	b.Load("v")
	b.Load("v")
	b.Call("coord", 2)
	b.FigSet("at")
	b.FigEnd()
	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return p
}

func staticLoader(p *vm.Program) Loader {
	return func(ctx context.Context) (*vm.Program, error) { return p, nil }
}

func eventAt(t *testing.T, l *lcode.List) *vm.Coord {
	t.Helper()
	cmds := l.Commands()
	if len(cmds) != 1 {
		t.Fatalf("list has %d commands, want 1", len(cmds))
	}
	return cmds[0].Args.(*lcode.EventArgs).At
}

// A render pass after the UI moves a control uses the control's new value.
func TestControlChangeRerender(t *testing.T) {
	c := NewCoordinator(staticLoader(speedProgram(t)), plainResolver, nil, nil)
	defer c.Stop()

	first, err := c.RunSync(Reload)
	if err != nil {
		t.Fatalf("RunSync error: %v", err)
	}
	if at := eventAt(t, first); at.T != 0.5 {
		t.Fatalf("initial event at t=%v, want 0.5", at.T)
	}

	ctls := c.Controls()
	if len(ctls) != 1 || ctls[0].Label() != "speed" {
		t.Fatalf("controls = %v", ctls)
	}
	if err := ctls[0].SetCurrent(vm.FromNumber(0.7)); err != nil {
		t.Fatalf("SetCurrent error: %v", err)
	}

	second, err := c.RunSync(Render)
	if err != nil {
		t.Fatalf("RunSync error: %v", err)
	}
	if at := eventAt(t, second); at.T != 0.7 || at.X != 0.7 {
		t.Errorf("re-rendered event at (%v, %v), want (0.7, 0.7)", at.T, at.X)
	}
}

// A reload tears the reactive tier down and reinstalls fresh controls.
func TestReloadResetsControls(t *testing.T) {
	c := NewCoordinator(staticLoader(speedProgram(t)), plainResolver, nil, nil)
	defer c.Stop()

	if _, err := c.RunSync(Reload); err != nil {
		t.Fatalf("RunSync error: %v", err)
	}
	c.Controls()[0].SetCurrent(vm.FromNumber(0.7))

	l, err := c.RunSync(Reload)
	if err != nil {
		t.Fatalf("second RunSync error: %v", err)
	}
	if at := eventAt(t, l); at.T != 0.5 {
		t.Errorf("event after reload at t=%v, want the initial 0.5", at.T)
	}
	if got := len(c.Controls()); got != 1 {
		t.Errorf("registry holds %d controls after reload, want 1", got)
	}
}

// A submission supersedes the in-flight pass and any queued request.
func TestSubmitSupersedes(t *testing.T) {
	prog := speedProgram(t)
	gate := make(chan struct{})
	var loads atomic.Int32
	loader := func(ctx context.Context) (*vm.Program, error) {
		if loads.Add(1) == 1 {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return prog, nil
	}

	results := make(chan error, 8)
	c := NewCoordinator(loader, plainResolver, nil, func(l *lcode.List, err error) {
		results <- err
	})
	defer c.Stop()

	c.Submit(Reload) // blocks in the loader until cancelled
	for i := 0; i < 50 && loads.Load() == 0; i++ {
		time.Sleep(time.Millisecond)
	}
	c.Submit(Render) // cancels the in-flight reload, queues
	c.Submit(Render) // displaces the queued render
	close(gate)

	select {
	case err := <-results:
		if err != nil {
			t.Fatalf("surviving pass error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no pass completed")
	}
	select {
	case err := <-results:
		t.Fatalf("superseded pass produced a result: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}

// A queued reload is never displaced by a later render.
func TestReloadSubsumesRender(t *testing.T) {
	prog := speedProgram(t)
	gate := make(chan struct{})
	var loads atomic.Int32
	loader := func(ctx context.Context) (*vm.Program, error) {
		if loads.Add(1) == 1 {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return prog, nil
	}

	done := make(chan struct{}, 8)
	c := NewCoordinator(loader, plainResolver, nil, func(l *lcode.List, err error) {
		done <- struct{}{}
	})
	defer c.Stop()

	c.Submit(Reload)
	for i := 0; i < 50 && loads.Load() == 0; i++ {
		time.Sleep(time.Millisecond)
	}
	c.Submit(Reload) // queued while the first blocks
	c.Submit(Render) // must not displace the queued reload
	close(gate)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("no pass completed")
	}
	if loads.Load() < 2 {
		t.Errorf("loader called %d times, the queued reload should have run", loads.Load())
	}
}

// A failed pass discards staged sticky writes; a successful one commits and
// persists them.
func TestStickyPersistsAcrossCoordinators(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sticky.db")

	prog := func(initial float64) *vm.Program {
		b := vm.NewBuilder("sticky")
		b.PushNum(initial)
		b.BindSticky("seed")
		b.FigBegin(vm.FigEvent)
		b.Load("seed")
		b.PushNum(0)
		b.Call("coord", 2)
		b.FigSet("at")
		b.FigEnd()
		p, err := b.Build()
		if err != nil {
			t.Fatalf("Build error: %v", err)
		}
		return p
	}

	db, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	c := NewCoordinator(staticLoader(prog(7)), plainResolver, db, nil)
	if _, err := c.RunSync(Reload); err != nil {
		t.Fatalf("RunSync error: %v", err)
	}
	c.Stop()
	db.Close()

	// A fresh coordinator with a different initializer sees the survivor.
	db, err = store.Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer db.Close()
	c = NewCoordinator(staticLoader(prog(99)), plainResolver, db, nil)
	defer c.Stop()
	l, err := c.RunSync(Reload)
	if err != nil {
		t.Fatalf("RunSync error: %v", err)
	}
	if at := eventAt(t, l); at.T != 7 {
		t.Errorf("seed = %v, want the persisted 7", at.T)
	}
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.lc")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if err := vm.EncodeProgram(f, speedProgram(t)); err != nil {
		t.Fatalf("EncodeProgram error: %v", err)
	}
	f.Close()

	prog, err := FileLoader(path)(context.Background())
	if err != nil {
		t.Fatalf("FileLoader error: %v", err)
	}
	if prog.Name != "speed" {
		t.Errorf("program name = %q", prog.Name)
	}

	if _, err := FileLoader(filepath.Join(t.TempDir(), "missing"))(context.Background()); err == nil {
		t.Error("missing file should fail")
	}
}
