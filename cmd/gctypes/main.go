package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	wasmgc "github.com/wippyai/wasm-gc"
	"github.com/wippyai/wasm-gc/alloc"
	"github.com/wippyai/wasm-gc/gctype"
	"github.com/wippyai/wasm-gc/wasm"
	"github.com/wippyai/wasm-gc/wat"
)

type options struct {
	wasmFile    string
	withFile    string
	demo        bool
	memPages    uint32
	interactive bool
}

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to module file (.wasm, or .wat for type definitions in text format)")
		withFile    = flag.String("with", "", "Second module to relate against (default: the first)")
		demo        = flag.Bool("demo", false, "Relate two built-in example modules")
		memPages    = flag.Uint("mem-pages", 0, "Keep canonical types in a linear memory of at most this many pages")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *wasmFile == "" && !*demo {
		fmt.Fprintln(os.Stderr, "Usage: gctypes -wasm <file.wasm|file.wat> [-with <other.wasm|other.wat>] [-mem-pages n] [-v]")
		fmt.Fprintln(os.Stderr, "       gctypes -demo")
		fmt.Fprintln(os.Stderr, "       gctypes -wasm <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		gctype.SetLogger(logger.Named("gctype"))
		alloc.SetLogger(logger.Named("alloc"))
	}

	opts := options{
		wasmFile:    *wasmFile,
		withFile:    *withFile,
		demo:        *demo,
		memPages:    uint32(*memPages),
		interactive: *interactive,
	}
	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	a, used, closeAlloc, err := newAllocator(ctx, opts.memPages)
	if err != nil {
		return err
	}
	defer closeAlloc()

	set, err := gctype.NewSet(0, gctype.WithAllocator(a))
	if err != nil {
		return fmt.Errorf("canonical set: %w", err)
	}
	defer set.Release()

	left, right, err := loadModules(opts, set)
	if err != nil {
		return err
	}

	rep := buildReport(left, right)
	rep.canonical = set.Len()
	rep.capacity = set.Cap()
	rep.charged = used()
	if ma, ok := a.(wasmgc.MemoryAllocator); ok {
		if sizer, ok := ma.Memory().(wasmgc.MemorySizer); ok {
			rep.memory = sizer.Size()
		}
	}

	if opts.interactive {
		if !isTerminal(out) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(rep)
	}
	return writeReport(out, rep, isTerminal(out))
}

// newAllocator returns the allocator backing the canonical set, a probe for
// the bytes it has charged, and its cleanup.
func newAllocator(ctx context.Context, memPages uint32) (wasmgc.Allocator, func() uint64, func(), error) {
	if memPages == 0 {
		q := alloc.NewQuota(0)
		return q, q.Used, func() {}, nil
	}
	w, err := alloc.NewWazero(ctx, &alloc.LinearConfig{MemoryLimitPages: memPages})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("linear memory: %w", err)
	}
	used := func() uint64 { return uint64(w.Used()) }
	return w, used, func() { w.Close(ctx) }, nil
}

type namedModule struct {
	name string
	mod  *wasm.Module
}

func loadModules(opts options, set *gctype.Set) (left, right namedModule, err error) {
	if opts.demo {
		return demoModules(set)
	}
	left, err = loadModule(opts.wasmFile, set)
	if err != nil {
		return left, right, err
	}
	if opts.withFile == "" {
		return left, left, nil
	}
	right, err = loadModule(opts.withFile, set)
	return left, right, err
}

func loadModule(path string, set *gctype.Set) (namedModule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return namedModule{}, fmt.Errorf("read file: %w", err)
	}
	var mod *wasm.Module
	if strings.EqualFold(filepath.Ext(path), ".wat") {
		mod, err = wat.Parse(string(data), gctype.WithCanonicalSet(set))
	} else {
		mod, err = wasm.ParseModuleCanonical(data, set)
	}
	if err != nil {
		return namedModule{}, fmt.Errorf("decode %s: %w", path, err)
	}
	name := path
	if mod.Name != "" {
		name = mod.Name + " (" + path + ")"
	}
	return namedModule{name: name, mod: mod}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
