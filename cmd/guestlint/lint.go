package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"guestlint/internal/diag"
	"guestlint/internal/diagfmt"
	"guestlint/internal/lint"
	"guestlint/internal/lintcache"
	"guestlint/internal/lintcfg"
	"guestlint/internal/source"
	"guestlint/internal/ui"
	"guestlint/internal/version"
)

var (
	lintFormat      string
	lintJobs        int
	lintMinSeverity string
	lintCategories  []string
	lintDisabled    []string
	lintNoConfig    bool
	lintNoCache     bool
	lintStats       bool
	lintNoSnippets  bool
	lintShowFixes   bool
	lintMax         int
	lintUI          bool
	lintErrOnWarn   bool
)

func init() {
	lintCmd.Flags().StringVarP(&lintFormat, "format", "f", "pretty", "output format (pretty|short|json|github)")
	lintCmd.Flags().IntVarP(&lintJobs, "jobs", "j", 0, "number of files linted in parallel (0 = GOMAXPROCS)")
	lintCmd.Flags().StringVar(&lintMinSeverity, "min-severity", "", "drop diagnostics below this severity (hint|info|warning|error)")
	lintCmd.Flags().StringSliceVar(&lintCategories, "category", nil, "only report the listed categories")
	lintCmd.Flags().StringSliceVar(&lintDisabled, "disable", nil, "disable rules by id")
	lintCmd.Flags().BoolVar(&lintNoConfig, "no-config", false, "ignore Cargo.toml lint level overrides")
	lintCmd.Flags().BoolVar(&lintNoCache, "no-cache", false, "disable the on-disk result cache")
	lintCmd.Flags().BoolVar(&lintStats, "stats", false, "print run statistics")
	lintCmd.Flags().BoolVar(&lintNoSnippets, "no-snippets", false, "omit source snippets from pretty output")
	lintCmd.Flags().BoolVar(&lintShowFixes, "fixes", false, "print suggested fixes in pretty output")
	lintCmd.Flags().IntVar(&lintMax, "max", 0, "truncate JSON output after N diagnostics (0 = unlimited)")
	lintCmd.Flags().BoolVar(&lintUI, "ui", false, "render interactive progress while linting")
	lintCmd.Flags().BoolVar(&lintErrOnWarn, "error-on-warnings", false, "exit non-zero when warnings remain")
}

var lintCmd = &cobra.Command{
	Use:           "lint [paths...]",
	Short:         "Lint guest handler sources",
	Long:          `Analyzes .rs files (or every .rs file under the given directories) and reports sandbox violations. Exits non-zero when error-level diagnostics remain.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLint,
}

type lintRunStats struct {
	files     atomic.Int64
	cacheHits atomic.Int64
	failures  atomic.Int64
}

func runLint(cmd *cobra.Command, args []string) error {
	start := time.Now()
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	colorOn := useColor(cmd, os.Stdout)
	quiet, _ := cmd.Flags().GetBool("quiet")

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := collectFiles(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if !quiet {
			fmt.Fprintln(errOut, "no .rs files found")
		}
		return nil
	}

	cfg, err := buildConfig(errOut, paths[0], quiet)
	if err != nil {
		return err
	}
	linter, err := lint.New(cfg)
	if err != nil {
		return err
	}

	var cache *lintcache.Cache
	if !lintNoCache {
		cache, err = lintcache.Open("guestlint")
		if err != nil {
			if !quiet {
				fmt.Fprintf(errOut, "warning: cache disabled: %v\n", err)
			}
			cache = nil
		}
	}

	jobs := lintJobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var events chan ui.Event
	var uiDone chan error
	interactive := lintUI && isTerminal(os.Stdout) && lintFormat == "pretty"
	if interactive {
		events = make(chan ui.Event, len(files)*2)
		uiDone = make(chan error, 1)
		model := ui.NewProgressModel("linting", files, events)
		go func() {
			_, err := tea.NewProgram(model).Run()
			uiDone <- err
		}()
	}

	var stats lintRunStats
	reports := make([]diagfmt.FileReport, len(files))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range files {
		g.Go(func() error {
			if interactive {
				events <- ui.Event{File: path, Status: ui.StatusLinting}
			}
			diags, hit, err := lintOne(linter, cache, path)
			if err != nil {
				stats.failures.Add(1)
				if interactive {
					events <- ui.Event{File: path, Status: ui.StatusError}
				}
				return err
			}
			stats.files.Add(1)
			if hit {
				stats.cacheHits.Add(1)
			}
			mu.Lock()
			reports[i] = diagfmt.FileReport{Path: path, Diagnostics: diags}
			mu.Unlock()
			if interactive {
				if len(diags) == 0 {
					events <- ui.Event{File: path, Status: ui.StatusClean}
				} else {
					events <- ui.Event{File: path, Status: ui.StatusIssues, Issues: len(diags)}
				}
			}
			return nil
		})
	}
	runErr := g.Wait()
	if interactive {
		close(events)
		<-uiDone
	}
	if runErr != nil {
		return runErr
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Path < reports[j].Path })

	var all []diag.Diagnostic
	for _, rep := range reports {
		all = append(all, rep.Diagnostics...)
	}
	summary := diag.Summarize(all)

	switch lintFormat {
	case "pretty":
		diagfmt.Pretty(out, reports, diagfmt.PrettyOpts{
			Color:       colorOn,
			PathMode:    diagfmt.PathModeRelative,
			ShowSnippet: !lintNoSnippets,
			ShowFixes:   lintShowFixes,
		})
		if !quiet {
			diagfmt.Summary(out, summary, colorOn)
		}
	case "short":
		diagfmt.Short(out, reports, diagfmt.PrettyOpts{PathMode: diagfmt.PathModeRelative})
	case "json":
		if err := diagfmt.JSON(out, reports, diagfmt.JSONOpts{
			PathMode: diagfmt.PathModeRelative,
			Max:      lintMax,
			Indent:   true,
		}); err != nil {
			return err
		}
	case "github":
		diagfmt.GitHub(out, reports)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, short, json or github)", lintFormat)
	}

	if lintStats {
		fmt.Fprintf(errOut, "linted %d file(s) in %s | cache hits: %d | rules: %d\n",
			stats.files.Load(), time.Since(start).Round(time.Millisecond),
			stats.cacheHits.Load(), len(linter.Engine().Catalog().Rules()))
	}

	if summary.Errors > 0 {
		return fmt.Errorf("found %d error(s)", summary.Errors)
	}
	if lintErrOnWarn && summary.Warnings > 0 {
		return fmt.Errorf("found %d warning(s)", summary.Warnings)
	}
	return nil
}

// lintOne analyzes a single file, going through the disk cache when one
// is available. hit reports whether the result came from the cache.
func lintOne(linter *lint.Linter, cache *lintcache.Cache, path string) ([]diag.Diagnostic, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	key := lintcache.HashContent(content, version.Plain)
	if diags, ok, err := cache.Get(key); err == nil && ok {
		return diags, true, nil
	}
	diags := linter.LintContent(path, source.Normalize(content))
	if err := cache.Put(key, path, diags); err != nil {
		// Cache write failures cost a re-analysis next run, nothing more.
		_ = err
	}
	return diags, false, nil
}

// buildConfig resolves manifest overrides and the CLI filter flags into
// one lint.Config.
func buildConfig(errOut io.Writer, startDir string, quiet bool) (lint.Config, error) {
	var cfg lint.Config

	if lintMinSeverity != "" {
		sev, ok := diag.ParseSeverity(lintMinSeverity)
		if !ok {
			return cfg, fmt.Errorf("unknown severity %q", lintMinSeverity)
		}
		cfg.MinSeverity = sev
	}
	for _, key := range lintCategories {
		cat, ok := diag.CategoryFromKey(strings.TrimSpace(key))
		if !ok {
			return cfg, fmt.Errorf("unknown category %q", key)
		}
		cfg.Categories = append(cfg.Categories, cat)
	}
	cfg.DisabledRules = lintDisabled

	if !lintNoConfig {
		if info, err := os.Stat(startDir); err == nil && !info.IsDir() {
			startDir = filepath.Dir(startDir)
		}
		overrides, manifestPath, err := lintcfg.Resolve(startDir)
		if err != nil {
			// A broken manifest must not block linting.
			if !quiet {
				fmt.Fprintf(errOut, "warning: ignoring lint config: %v\n", err)
			}
		} else {
			cfg.Overrides = overrides
			_ = manifestPath
		}
	}
	return cfg, nil
}

// collectFiles expands the path arguments to the set of .rs files,
// skipping hidden directories and build output.
func collectFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if name == "target" || (strings.HasPrefix(name, ".") && p != path) {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(p) == ".rs" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}
