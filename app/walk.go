package app

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

type DirectoryReader struct {
	p string

	excludeList  []string
	excludeGlobs []glob.Glob
}

type DirectoryFile struct {
	fi os.FileInfo
	p  string

	label string
}

func (za *DirectoryFile) Name() string {
	return za.label
}

func (za *DirectoryFile) Path() string {
	return za.p
}

func (za *DirectoryFile) Size() int64 {
	return za.fi.Size()
}

func (za *DirectoryFile) Open() (io.ReadCloser, error) {
	return os.Open(za.p)
}

var skipDirs = map[string]bool{
	"/proc": true,
	"/dev":  true,
	"/net":  true,
	"/sys":  true,
}

// Walk visits every regular file below the root. Entries are named by their
// path relative to the root; a root that is itself a file keeps its path.
// A symlinked root is followed; links below the root are not.
func (za *DirectoryReader) Walk(fn WalkFunc) error {
	root, err := filepath.EvalSymlinks(za.p)
	if err != nil {
		return fn(nil, &ArchiveError{p: za.p, Err: err})
	}

	return filepath.Walk(root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return fn(nil, &ArchiveError{p: path, Err: err})
		}

		if info.IsDir() {
			if abs, _ := filepath.Abs(path); skipDirs[abs] {
				return filepath.SkipDir
			} else if IsExcluded(path, za.excludeList, za.excludeGlobs) {
				log.Debugf("excluded directory: %s", path)
				return filepath.SkipDir
			}

			return nil
		}

		if IsExcluded(path, za.excludeList, za.excludeGlobs) {
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		label, err := filepath.Rel(root, path)
		if err != nil || label == "." {
			label = za.p
		}

		return fn(&DirectoryFile{fi: info, p: path, label: filepath.ToSlash(label)}, nil)
	})
}

func (za *DirectoryReader) Close() error {
	return nil
}

func NewDirectoryReader(p string, excludeList []string, excludeGlobs []glob.Glob) (ArchiveReader, error) {
	return &DirectoryReader{p, excludeList, excludeGlobs}, nil
}

// IsExcluded reports whether p is one of the excluded directories or matches
// one of the exclude patterns.
func IsExcluded(p string, dirs []string, globs []glob.Glob) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}

	for _, d := range dirs {
		if d == abs {
			return true
		}
	}

	for _, g := range globs {
		if g.Match(filepath.ToSlash(p)) {
			return true
		}
	}

	return false
}
