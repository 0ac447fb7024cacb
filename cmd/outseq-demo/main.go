// Command outseq-demo pretends to evaluate every entry of a directory in
// parallel, printing a report for each one. The reports appear in sorted order
// and never interleave, while the report of the entry currently at the front is
// printed as it is written.
//
// Settings come from OUTSEQ_* environment variables and the TOML file named by
// OUTSEQ_CONFIG, and can be overridden with flags:
//
//	outseq-demo --workers 4 --color always /usr/lib
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/notorious-go/outseq/internal/config"
	"github.com/notorious-go/outseq/sequencer"
	"github.com/notorious-go/outseq/termout"
)

func main() {
	logger := log.New(os.Stderr, "outseq-demo: ", 0)

	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		logger.Fatal(err)
	}

	seq := sequencer.New(cfg.Output(), sequencer.WithErrorLog(logger))
	if err := run(cfg, seq); err != nil {
		logger.Fatal(err)
	}
}

// run evaluates the entries of cfg.Dir, one task per entry in sorted order.
func run(cfg config.Config, seq *sequencer.Sequencer) error {
	paths, err := listDir(cfg.Dir)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for _, path := range paths {
		// Tasks are begun here, in order, so that task indices follow the sorted
		// paths no matter which goroutine finishes first.
		task := seq.Begin()
		g.Go(func() error {
			defer task.Complete()
			evaluate(task, path, cfg)
			return nil
		})
	}
	return g.Wait()
}

func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

func evaluate(task *sequencer.Task, path string, cfg config.Config) {
	task.Print("evaluating ")
	task.Bold()
	task.Println(path)
	task.ResetColor()

	// Do some expensive work...
	time.Sleep(cfg.Delay * time.Duration(len(path)))

	// ... which may fail or succeed.
	if strings.Contains(path, cfg.Letter) {
		task.BoldColor(termout.Red)
		task.Print("  ERROR")
		task.ResetColor()
		task.Printf(": path contains the letter '%s'\n", cfg.Letter)
	}
}
