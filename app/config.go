package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"
)

type config struct {
	quiet    bool
	progress bool

	// zero means unlimited
	maxDepth     int
	maxEntrySize int64

	out io.Writer

	allImages bool
}

type OptionFn func(b *scanner) error

// TargetPath sets the directory or archive to scan.
func TargetPath(p string) (OptionFn, error) {
	fi, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("%s is not a directory or an archive", p)
	} else if !fi.IsDir() && !(fi.Mode().IsRegular() && IsAcceptable(p)) {
		return nil, fmt.Errorf("%s is not a directory or an archive", p)
	}

	return func(b *scanner) error {
		b.targetPath = p
		return nil
	}, nil
}

// ExcludeList skips the given directories while walking. Every entry must
// be an existing directory.
func ExcludeList(l []string) (OptionFn, error) {
	abs := make([]string, 0, len(l))

	for _, p := range l {
		if fi, err := os.Stat(p); err != nil || !fi.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", p)
		}

		v, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}

		// the walk visits resolved paths
		if r, err := filepath.EvalSymlinks(v); err == nil {
			v = r
		}

		abs = append(abs, v)
	}

	return func(b *scanner) error {
		b.excludeList = append(b.excludeList, l...)
		b.excludeDirs = append(b.excludeDirs, abs...)
		return nil
	}, nil
}

// ExcludeGlobs skips files and directories whose path matches one of the
// patterns.
func ExcludeGlobs(patterns []string) (OptionFn, error) {
	globs := make([]glob.Glob, 0, len(patterns))

	for _, s := range patterns {
		g, err := glob.Compile(s, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", s, err)
		}

		globs = append(globs, g)
	}

	return func(b *scanner) error {
		b.excludeGlobs = append(b.excludeGlobs, globs...)
		return nil
	}, nil
}

func Quiet() (OptionFn, error) {
	return func(b *scanner) error {
		b.quiet = true
		return nil
	}, nil
}

func Progress() (OptionFn, error) {
	return func(b *scanner) error {
		b.progress = true
		return nil
	}, nil
}

// MaxDepth limits how deep containers may be nested. Zero disables the
// limit.
func MaxDepth(v int) (OptionFn, error) {
	if v < 0 {
		return nil, fmt.Errorf("max depth should be zero or positive: %d", v)
	}

	return func(b *scanner) error {
		b.maxDepth = v
		return nil
	}, nil
}

// MaxEntrySize limits the size of entries read into memory, e.g. "512MB".
// An empty string or "0" disables the limit.
func MaxEntrySize(s string) (OptionFn, error) {
	var v uint64

	if s != "" {
		var err error
		if v, err = humanize.ParseBytes(s); err != nil {
			return nil, fmt.Errorf("invalid max entry size %q: %w", s, err)
		}
	}

	return func(b *scanner) error {
		b.maxEntrySize = int64(v)
		return nil
	}, nil
}

// Output sets the destination of report lines, color.Output by default.
func Output(w io.Writer) (OptionFn, error) {
	return func(b *scanner) error {
		b.out = w
		return nil
	}, nil
}

// Images sets the image references scanned by ScanImage.
func Images(refs []string) (OptionFn, error) {
	return func(b *scanner) error {
		b.images = append(b.images, refs...)
		return nil
	}, nil
}

// AllImages makes ScanImage scan every image known to the local engine.
func AllImages() (OptionFn, error) {
	return func(b *scanner) error {
		b.allImages = true
		return nil
	}, nil
}
