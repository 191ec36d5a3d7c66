package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"braces.dev/errtrace"
	"go.abhg.dev/notahint/internal/annotate"
	"go.abhg.dev/notahint/internal/errdefer"
	"golang.org/x/sync/errgroup"
)

// Annotator annotates a single HTML document.
type Annotator interface {
	Document(w io.Writer, r io.Reader) (annotate.Stats, error)
}

var _ Annotator = (*annotate.Annotator)(nil)

// _stdinPath is the path that refers to stdin/stdout.
const _stdinPath = "-"

// Runner annotates pages of a generated documentation site.
//
// In terms of code organization,
// Runner's purpose is to add a separation between main
// and the program's core logic to aid in testability.
type Runner struct {
	Log       *log.Logger // required
	Annotator Annotator   // required

	// OutDir is the directory to write annotated pages to.
	// If empty, pages are rewritten in place.
	OutDir string

	// Exclude lists patterns for files to skip
	// when walking directories.
	Exclude []globPattern

	// Jobs is the maximum number of files annotated at once.
	// Values below 1 are treated as 1.
	// The command line defaults this to GOMAXPROCS.
	Jobs int

	Stdin  io.Reader
	Stdout io.Writer
}

// page is a single file to annotate.
type page struct {
	Src string // path to read from, or "-"
	Rel string // path relative to the output directory
}

// Run annotates all pages found under the given paths.
// It returns the combined statistics of all pages.
func (r *Runner) Run(ctx context.Context, paths []string) (annotate.Stats, error) {
	pages, err := r.findPages(paths)
	if err != nil {
		return annotate.Stats{}, errtrace.Wrap(err)
	}

	var (
		mu    sync.Mutex
		total annotate.Stats
	)

	jobs := r.Jobs
	if jobs < 1 {
		jobs = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, p := range pages {
		p := p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errtrace.Wrap(err)
			}

			stats, err := r.annotatePage(p)
			if err != nil {
				return errtrace.Wrap(fmt.Errorf("%v: %w", p.Src, err))
			}
			r.Log.Printf("Annotated %v: %v", p.Src, stats)

			mu.Lock()
			total.Add(stats)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return total, errtrace.Wrap(err)
	}
	return total, nil
}

func (r *Runner) findPages(paths []string) ([]page, error) {
	var (
		pages     []page
		seenStdin bool
	)
	for _, p := range paths {
		if p == _stdinPath {
			if seenStdin {
				return nil, errtrace.Wrap(errors.New("stdin may only be specified once"))
			}
			seenStdin = true
			pages = append(pages, page{Src: _stdinPath})
			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}

		if !info.IsDir() {
			pages = append(pages, page{Src: p, Rel: filepath.Base(p)})
			continue
		}

		found, err := r.walkDir(p)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		pages = append(pages, found...)
	}

	if err := r.checkCollisions(pages); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return pages, nil
}

// dest returns the path that the annotated page is written to.
func (r *Runner) dest(p page) string {
	if r.OutDir == "" {
		return filepath.Clean(p.Src)
	}
	return filepath.Join(r.OutDir, p.Rel)
}

// checkCollisions reports an error if two pages would be written
// to the same file.
func (r *Runner) checkCollisions(pages []page) error {
	seen := make(map[string]string, len(pages)) // dest => src
	for _, p := range pages {
		if p.Src == _stdinPath {
			continue
		}
		dst := r.dest(p)
		if prev, ok := seen[dst]; ok {
			return errtrace.Wrap(fmt.Errorf("%v and %v would both be written to %v", prev, p.Src, dst))
		}
		seen[dst] = p.Src
	}
	return nil
}

func (r *Runner) walkDir(root string) ([]page, error) {
	var pages []page
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errtrace.Wrap(err)
		}
		if d.IsDir() || !isHTML(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errtrace.Wrap(err)
		}
		if r.excluded(filepath.ToSlash(rel)) {
			r.Log.Printf("Skipping %v", path)
			return nil
		}

		pages = append(pages, page{Src: path, Rel: rel})
		return nil
	})
	return pages, errtrace.Wrap(err)
}

func (r *Runner) excluded(rel string) bool {
	for _, pat := range r.Exclude {
		if pat.Match(rel) {
			return true
		}
	}
	return false
}

func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}

func (r *Runner) annotatePage(p page) (annotate.Stats, error) {
	if p.Src == _stdinPath {
		return errtrace.Wrap2(r.Annotator.Document(r.Stdout, r.Stdin))
	}

	src, err := os.ReadFile(p.Src)
	if err != nil {
		return annotate.Stats{}, errtrace.Wrap(err)
	}

	var out bytes.Buffer
	stats, err := r.Annotator.Document(&out, bytes.NewReader(src))
	if err != nil {
		return stats, errtrace.Wrap(err)
	}

	return stats, errtrace.Wrap(writeFileAtomic(r.dest(p), out.Bytes()))
}

// writeFileAtomic writes body to a temporary file next to path,
// and renames it over path once it has been written completely.
func writeFileAtomic(path string, body []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o1755); err != nil {
		return errtrace.Wrap(err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	f, err := os.CreateTemp(dir, ".notahint-*")
	if err != nil {
		return errtrace.Wrap(err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if err := writeAndClose(f, body); err != nil {
		return errtrace.Wrap(err)
	}
	if err := os.Chmod(f.Name(), mode); err != nil {
		return errtrace.Wrap(err)
	}
	return errtrace.Wrap(os.Rename(f.Name(), path))
}

func writeAndClose(f *os.File, body []byte) (err error) {
	defer errdefer.Close(&err, f)

	_, err = f.Write(body)
	return errtrace.Wrap(err)
}
