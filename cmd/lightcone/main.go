// Lightcone CLI - executes compiled spacetime-diagram programs
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tliron/commonlog"

	"github.com/ahearne/lightcone/lcode"
	"github.com/ahearne/lightcone/runner"
	"github.com/ahearne/lightcone/store"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	configPath := flag.String("c", "", "TOML configuration file")
	once := flag.Bool("once", false, "Run one pass and exit")
	watch := flag.Bool("watch", false, "Re-run when the program file changes")
	dump := flag.Bool("dump", false, "Print the render command list as text after each pass")
	verbosity := flag.Int("v", 0, "Log verbosity (0 quiet)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lightcone [options] [program.lc]\n\n")
		fmt.Fprintf(os.Stderr, "Executes a compiled diagram program and replays its render commands.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  lightcone -once -dump twin.lc   # Run once, print the command list\n")
		fmt.Fprintf(os.Stderr, "  lightcone -watch twin.lc        # Re-run on every save\n")
		fmt.Fprintf(os.Stderr, "  lightcone -c lightcone.toml     # Run from a config file\n")
	}
	flag.Parse()

	cfg := runner.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = runner.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if flag.NArg() > 0 {
		cfg.Program = flag.Arg(0)
	}
	if *watch {
		cfg.Watch = true
	}
	if *verbosity > cfg.Verbosity {
		cfg.Verbosity = *verbosity
	}
	if cfg.Program == "" {
		fmt.Fprintf(os.Stderr, "Error: no program file given\n")
		flag.Usage()
		os.Exit(1)
	}

	commonlog.Configure(cfg.Verbosity, nil)

	var db *store.DB
	if cfg.StickyPath != "" {
		var err error
		db, err = store.Open(cfg.StickyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	resolver := &lcode.StaticResolver{
		Base: lcode.Style{Color: "black", LineWidth: 1, Opacity: 1},
	}

	var anim *runner.Animator
	onResult := func(l *lcode.List, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Printf("rendered %d commands\n", l.Len())
		if *dump {
			fmt.Print(lcode.Dump(l))
		}
		// A reload can introduce fresh animate controls after the animator
		// stopped itself.
		anim.Start()
	}

	coord := runner.NewCoordinator(runner.FileLoader(cfg.Program), resolver, db, onResult)
	defer coord.Stop()

	if *once {
		list, err := coord.RunSync(runner.Reload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *dump {
			fmt.Print(lcode.Dump(list))
		}
		return
	}

	anim = runner.NewAnimator(coord, cfg.FrameRate)
	defer anim.Stop()

	coord.Submit(runner.Reload)

	if cfg.Watch {
		w, err := runner.Watch(cfg.Program, func() { coord.Submit(runner.Reload) })
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer w.Close()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	fmt.Fprintln(os.Stderr, "shutting down")
}
