package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Kind is the container family, chosen by file name suffix only.
type Kind int

const (
	KindNone Kind = iota
	KindZip
	KindTar
)

var (
	zipExtensions = []string{".jar", ".war", ".sar", ".ear", ".par", ".zip", ".apk"}
	tarExtensions = []string{".gz", ".tar"}
)

func KindOf(name string) Kind {
	for _, ext := range zipExtensions {
		if strings.HasSuffix(name, ext) {
			return KindZip
		}
	}

	for _, ext := range tarExtensions {
		if strings.HasSuffix(name, ext) {
			return KindTar
		}
	}

	return KindNone
}

// IsAcceptable reports whether name looks like a container that can be
// scanned.
func IsAcceptable(name string) bool {
	return KindOf(name) != KindNone
}

func joinLabel(label, name string) string {
	if label == "" {
		return name
	}

	return label + "/" + name
}

// Scan walks the target directory, or the target archive, and prints one
// diagnosis for every container holding StringLookupFactory.
func (b *scanner) Scan(ctx context.Context) error {
	if b.targetPath == "" {
		return fmt.Errorf("no target specified")
	}

	start := time.Now()

	b.output.WriteLine("Scanning %s", b.targetPath)
	if len(b.excludeList) > 0 {
		b.output.WriteLine("Excluded: %s", strings.Join(b.excludeList, ", "))
	}

	dr, err := NewDirectoryReader(b.targetPath, b.excludeDirs, b.excludeGlobs)
	if err != nil {
		return err
	}

	defer dr.Close()

	err = dr.Walk(func(f ArchiveFile, err error) error {
		if err != nil {
			b.report(err)
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if !IsAcceptable(f.Name()) {
			return nil
		}

		b.stats.IncFile()
		b.stats.AddBytes(f.Size())

		defer b.updateProgress()

		return b.scanEntry(ctx, f, f.Name(), 0)
	})

	b.logSummary(start)
	return err
}

// scan dispatches r by the suffix of its label. Only cancellation is
// returned; container failures are reported and swallowed.
func (b *scanner) scan(ctx context.Context, r io.Reader, size int64, label string, depth int) error {
	kind := KindOf(label)
	if kind == KindNone {
		return nil
	}

	return b.scanContainer(ctx, kind, r, size, label, depth)
}

func (b *scanner) scanContainer(ctx context.Context, kind Kind, r io.Reader, size int64, label string, depth int) error {
	if b.maxDepth > 0 && depth > b.maxDepth {
		b.reportError(label, fmt.Errorf("%w (%d)", ErrTooDeep, b.maxDepth))
		return nil
	}

	ar, err := b.open(kind, r, size)
	if err != nil {
		b.reportError(label, err)
		return nil
	}

	defer ar.Close()

	b.stats.IncContainer()

	log.Debugf("scanning container %s", label)

	current := BucketNotFound

	err = ar.Walk(func(f ArchiveFile, err error) error {
		if err != nil {
			b.report(err)
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		name := f.Name()
		if IsAcceptable(name) {
			return b.scanEntry(ctx, f, joinLabel(label, name), depth+1)
		}

		if !IsTargetClass(name) {
			return nil
		}

		if current != BucketNotFound {
			b.warnConfusion(name)
		}

		data, err := b.readEntry(f)
		if err != nil {
			b.reportError(joinLabel(label, name), err)
			return nil
		}

		current = Classify(data)

		log.Debugf("%s: %s", joinLabel(label, name), current)
		return nil
	})

	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	} else if err != nil {
		b.reportError(label, err)
		return nil
	}

	if current == BucketNotFound {
		return nil
	}

	b.printDiagnosis(label, Diagnose(current))
	return nil
}

func (b *scanner) scanEntry(ctx context.Context, f ArchiveFile, label string, depth int) error {
	rc, err := f.Open()
	if err != nil {
		b.reportError(label, err)
		return nil
	}

	defer rc.Close()

	return b.scan(ctx, rc, f.Size(), label, depth)
}

// open returns the reader for the container family. Zip needs random
// access; streams that don't offer it are buffered in memory.
func (b *scanner) open(kind Kind, r io.Reader, size int64) (ArchiveReader, error) {
	switch kind {
	case KindZip:
		ra, ok := r.(io.ReaderAt)
		if !ok || size < 0 {
			data, err := b.readAll(r)
			if err != nil {
				return nil, err
			}

			ra, size = bytes.NewReader(data), int64(len(data))
		}

		return NewZipArchiveReader(ra, size)
	case KindTar:
		return NewTARArchiveReader(r)
	}

	return nil, fmt.Errorf("unsupported container kind: %d", kind)
}

func (b *scanner) readEntry(f ArchiveFile) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}

	defer rc.Close()

	return b.readAll(rc)
}

func (b *scanner) readAll(r io.Reader) ([]byte, error) {
	if b.maxEntrySize <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, b.maxEntrySize+1))
	if err != nil {
		return nil, err
	} else if int64(len(data)) > b.maxEntrySize {
		return nil, fmt.Errorf("%w: exceeds %s", ErrTooLarge, humanize.Bytes(uint64(b.maxEntrySize)))
	}

	return data, nil
}
