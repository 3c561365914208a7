// Command meshcheck loads many OBJ files concurrently and reports their triangle counts and bounds,
// exiting non-zero if any file fails to parse or index.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-soft/common"
	"github.com/Carmen-Shannon/oxy-soft/engine/loader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/schollz/progressbar/v3"
)

// result is the outcome of checking one file.
type result struct {
	path      string
	triangles int
	min, max  mgl32.Vec3
	center    mgl32.Vec3
	err       error
}

type checker struct {
	workers  int
	progress bool
	out      io.Writer
}

// collect expands directories into the .obj files beneath them. Plain file arguments are kept as given.
func collect(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".obj") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// check loads every file through one shared loader on a worker pool and returns results in input order.
func (c *checker) check(files []string) []result {
	l := loader.NewLoader(loader.BackendTypeOBJ)
	defer func() {
		if err := l.ReleaseAll(); err != nil {
			common.Logger().Warn("release failed", "error", err)
		}
	}()

	var bar *progressbar.ProgressBar
	if c.progress {
		bar = progressbar.Default(int64(len(files)), "checking")
		defer bar.Close()
	}

	results := make([]result, len(files))
	pool := worker.NewDynamicWorkerPool(c.workers, 256, 1*time.Second)

	// pool.Wait() only returns once workers idle out, so a WaitGroup marks completion.
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: path,
			Do: func() (any, error) {
				defer wg.Done()
				if bar != nil {
					defer bar.Add(1)
				}

				r := result{path: path}
				m, err := l.Load(path)
				if err != nil {
					r.err = err
				} else {
					r.triangles = m.TriangleCount()
					r.min, r.max, r.center = m.BoundingMin(), m.BoundingMax(), m.Center()
				}
				results[i] = r
				return r, r.err
			},
		})
	}
	wg.Wait()
	pool.Stop()

	return results
}

// report writes one row per file and a summary line, returning the number of failures.
func (c *checker) report(results []result) int {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tTRIANGLES\tMIN\tMAX\tCENTER")

	failed, triangles := 0, 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(tw, "%s\tERROR\t%v\t\t\n", r.path, r.err)
			continue
		}
		triangles += r.triangles
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", r.path, r.triangles, formatVec(r.min), formatVec(r.max), formatVec(r.center))
	}
	tw.Flush()

	fmt.Fprintf(c.out, "%d files, %d failed, %d triangles\n", len(results), failed, triangles)
	return failed
}

func formatVec(v mgl32.Vec3) string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", v[0], v[1], v[2])
}

func run() (int, error) {
	workers := flag.Int("workers", runtime.NumCPU(), "number of concurrent loaders")
	quiet := flag.Bool("q", false, "disable the progress bar")
	verbose := flag.Bool("v", false, "debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `meshcheck - validate OBJ meshes

USAGE:
  meshcheck [flags] <file-or-dir>...

Directories are searched recursively for .obj files.

FLAGS:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 0, errors.New("no input given")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	files, err := collect(flag.Args())
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, errors.New("no .obj files found")
	}

	c := &checker{workers: *workers, progress: !*quiet, out: os.Stdout}
	return c.report(c.check(files)), nil
}

func main() {
	failed, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "meshcheck: %v\n", err)
		os.Exit(2)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
