package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sbl8/arraycore/config"
	"github.com/sbl8/arraycore/core"
	"github.com/sbl8/arraycore/guard"
	"github.com/sbl8/arraycore/sizedbuf"
	"github.com/sbl8/arraycore/types"
)

var (
	testType   = flag.String("test", "all", "Test type: all, create, assign, resize, arith, guard")
	size       = flag.Int("size", 1024, "Test data size")
	iter       = flag.Int("iter", 1000, "Number of iterations")
	configPath = flag.String("config", "", "YAML tunables file (overrides ARRAYCORE_* variables)")
	verbose    = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			return 1
		}
		defer func() { _ = l.Sync() }()
		core.SetLogger(l)
	}

	if *configPath != "" {
		t, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		if err := config.Set(t); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
	}
	tu := config.Current()

	fmt.Printf("Array Core Performance Analysis Tool\n")
	fmt.Printf("====================================\n")
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("CPUs: %d (features: %s)\n", tu.NCPU, strings.Join(config.Features(), " "))
	fmt.Printf("Pool: %d threads, min %d, max %d elements\n", tu.NThreads, tu.MinElts, tu.MaxElts)
	fmt.Printf("Test Size: %d elements (inline capacity %d)\n", *size, sizedbuf.SmallArraySize)
	fmt.Printf("Iterations: %d\n", *iter)
	fmt.Printf("\n")

	test, ok := sections[*testType]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown test type: %s\n", *testType)
		return 1
	}
	if err := core.Catch(test); err != nil {
		fmt.Fprintf(os.Stderr, "failure: %v\n", err)
		return 1
	}
	return 0
}

var sections = map[string]func(){
	"all":    runAllTests,
	"create": runCreateTests,
	"assign": runAssignTests,
	"resize": runResizeTests,
	"arith":  runArithTests,
	"guard":  runGuardTests,
}

func runAllTests() {
	fmt.Printf("Running comprehensive performance tests...\n\n")
	runCreateTests()
	runAssignTests()
	runResizeTests()
	runArithTests()
	runGuardTests()
}

// report prints one timing line together with the heap store traffic the
// measured loop caused.
func report(name string, d time.Duration, before sizedbuf.Stats) {
	after := sizedbuf.ReadStats()
	elementsPerSecond := float64(*size*(*iter)) / d.Seconds()
	fmt.Printf("%-28s %v (%.2f Melem/s, %d heap allocs)\n",
		name+":", d, elementsPerSecond/1e6, after.Allocs-before.Allocs)
}

func runCreateTests() {
	fmt.Printf("Construction\n")
	fmt.Printf("------------\n")

	src := generateFloat64(*size)

	before := sizedbuf.ReadStats()
	start := time.Now()
	for i := 0; i < *iter; i++ {
		b := sizedbuf.NewFill[types.DDouble](1, *size)
		b.Release()
	}
	report("NewFill", time.Since(start), before)

	before = sizedbuf.ReadStats()
	start = time.Now()
	for i := 0; i < *iter; i++ {
		b := sizedbuf.FromSlice(src)
		b.Release()
	}
	report("FromSlice", time.Since(start), before)

	proto := sizedbuf.FromSlice(src)
	before = sizedbuf.ReadStats()
	start = time.Now()
	for i := 0; i < *iter; i++ {
		c := proto.Clone()
		c.Release()
	}
	report("Clone", time.Since(start), before)

	before = sizedbuf.ReadStats()
	start = time.Now()
	for i := 0; i < *iter; i++ {
		_ = sizedbuf.NewScalar[types.DDouble](float64(i))
	}
	report("NewScalar", time.Since(start), before)

	fillElements("NewFill (DByte)", types.DByte(7))
	fillElements("NewFill (DComplexDbl)", types.DComplexDbl(complex(1, -1)))
	fillElements("NewFill (DString)", types.DString("x"))

	fmt.Printf("\n")
}

// fillElements times construction and clone for one element kind of the
// alphabet.
func fillElements[T types.Element](name string, v T) {
	before := sizedbuf.ReadStats()
	start := time.Now()
	for i := 0; i < *iter; i++ {
		b := sizedbuf.NewFill(v, *size)
		c := b.Clone()
		c.Release()
		b.Release()
	}
	report(name, time.Since(start), before)
}

func runAssignTests() {
	fmt.Printf("Assignment\n")
	fmt.Printf("----------\n")

	a := sizedbuf.FromSlice(generateFloat64(*size))
	b := sizedbuf.FromSlice(generateFloat64(*size))

	before := sizedbuf.ReadStats()
	start := time.Now()
	for i := 0; i < *iter; i++ {
		a.Assign(b)
	}
	report("Assign (same size)", time.Since(start), before)

	small := sizedbuf.New[types.DDouble](1)
	before = sizedbuf.ReadStats()
	start = time.Now()
	for i := 0; i < *iter; i++ {
		a.Assign(small)
		a.Assign(b)
	}
	report("Assign (resizing)", time.Since(start), before)

	fmt.Printf("\n")
}

func runResizeTests() {
	fmt.Printf("Growth\n")
	fmt.Printf("------\n")

	before := sizedbuf.ReadStats()
	start := time.Now()
	for i := 0; i < *iter; i++ {
		b := sizedbuf.New[types.DLong](0)
		b.Resize(*size)
		b.Release()
	}
	report("Resize (final size)", time.Since(start), before)

	steps := 8
	before = sizedbuf.ReadStats()
	start = time.Now()
	for i := 0; i < *iter; i++ {
		b := sizedbuf.New[types.DLong](0)
		for s := 1; s <= steps; s++ {
			if n := *size * s / steps; n > b.Len() {
				b.Resize(n)
			}
		}
		b.Release()
	}
	report(fmt.Sprintf("Resize (%d steps)", steps), time.Since(start), before)

	fmt.Printf("\n")
}

func runArithTests() {
	fmt.Printf("Compound Updates\n")
	fmt.Printf("----------------\n")

	a := sizedbuf.FromSlice(generateFloat64(*size))
	b := sizedbuf.FromSlice(generateFloat64(*size))

	tests := []struct {
		name string
		fn   func()
	}{
		{"AddAssign", func() { sizedbuf.AddAssign(a, b) }},
		{"SubAssign", func() { sizedbuf.SubAssign(a, b) }},
		{"AddScalar", func() { sizedbuf.AddScalar(a, 0.5) }},
		{"SubScalar", func() { sizedbuf.SubScalar(a, 0.5) }},
	}

	for _, test := range tests {
		before := sizedbuf.ReadStats()
		start := time.Now()
		for i := 0; i < *iter; i++ {
			test.fn()
		}
		report(test.name, time.Since(start), before)
	}

	fmt.Printf("\n")
}

type handle struct{ b *sizedbuf.Buffer[types.DDouble] }

func (h *handle) Destroy() { h.b.Release() }

func runGuardTests() {
	fmt.Printf("Guarded Rollback\n")
	fmt.Printf("----------------\n")

	var stack guard.Slice[*handle]
	rolledBack := 0

	before := sizedbuf.ReadStats()
	start := time.Now()
	for i := 0; i < *iter; i++ {
		err := core.Catch(func() {
			g := guard.NewStack[*handle](&stack)
			defer g.Restore()
			for j := 0; j < 4; j++ {
				stack.Push(&handle{b: sizedbuf.New[types.DDouble](*size)})
			}
			core.Raise(core.KindAllocation, "arrperf", "simulated failure")
		})
		if err != nil {
			rolledBack++
		}
	}
	report("Push+rollback x4", time.Since(start), before)

	live := sizedbuf.ReadStats().LiveBytes - before.LiveBytes
	fmt.Printf("  rolled back %d scopes, %d bytes still live, stack depth %d\n",
		rolledBack, live, stack.Len())

	fmt.Printf("\n")
}

func generateFloat64(size int) []float64 {
	data := make([]float64, size)
	for i := range data {
		data[i] = rand.Float64()*200 - 100 // Range: -100 to 100
	}
	return data
}
