package app

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"io"
	"strings"
)

type ArchiveFile interface {
	Name() string
	// Size is the uncompressed size, or -1 when unknown.
	Size() int64
	Open() (io.ReadCloser, error)
}

// WalkFunc is called for every entry of an archive. Readers that can
// recover from a failure pass it in err with a nil file; returning an error
// stops the walk.
type WalkFunc func(f ArchiveFile, err error) error

type ArchiveReader interface {
	Walk(fn WalkFunc) error
	Close() error
}

type ZIPArchiveFile struct {
	*zip.File
}

func (za *ZIPArchiveFile) Name() string {
	return za.File.Name
}

func (za *ZIPArchiveFile) Size() int64 {
	return int64(za.File.UncompressedSize64)
}

func (za *ZIPArchiveFile) Open() (io.ReadCloser, error) {
	if za.File.FileHeader.Flags&0x1 == 1 {
		return nil, ErrEncrypted
	}

	return za.File.Open()
}

type ZIPArchiveReader struct {
	*zip.Reader
}

// Walk visits the entries in central directory order.
func (za *ZIPArchiveReader) Walk(fn WalkFunc) error {
	for _, f := range za.Reader.File {
		if err := fn(&ZIPArchiveFile{f}, nil); err != nil {
			return err
		}
	}

	return nil
}

func (za *ZIPArchiveReader) Close() error {
	return nil
}

func NewZipArchiveReader(br io.ReaderAt, size int64) (ArchiveReader, error) {
	r2, err := zip.NewReader(br, size)
	switch {
	case err == nil:
	case errors.Is(err, zip.ErrInsecurePath):
		// entry names are only used as labels, nothing is extracted
	default:
		return nil, badFormat(err)
	}

	return &ZIPArchiveReader{r2}, nil
}

type TARArchiveFile struct {
	*tar.Header

	r io.Reader
}

func (za *TARArchiveFile) Name() string {
	return za.Header.Name
}

func (za *TARArchiveFile) Size() int64 {
	return za.Header.Size
}

// Open returns the entry contents. The reader is only valid until the walk
// moves to the next entry.
func (za *TARArchiveFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(za.r), nil
}

type TARArchiveReader struct {
	*tar.Reader

	dc io.Closer
}

func (za *TARArchiveReader) Walk(fn WalkFunc) error {
	for {
		header, err := za.Reader.Next()
		if err == io.EOF {
			return nil
		} else if errors.Is(err, tar.ErrInsecurePath) {
			// only returned with GODEBUG=tarinsecurepath=0, the header is valid
			log.Debugf("skipping insecure tar entry: %s", header.Name)
			continue
		} else if err != nil {
			return badFormat(err)
		}

		if !header.FileInfo().Mode().IsRegular() {
			continue
		}

		if hasParentRef(header.Name) {
			log.Debugf("skipping tar entry with parent reference: %s", header.Name)
			continue
		}

		if err := fn(&TARArchiveFile{header, za.Reader}, nil); err != nil {
			return err
		}
	}
}

func (za *TARArchiveReader) Close() error {
	return za.dc.Close()
}

// NewTARArchiveReader reads a tar stream, transparently decompressing gzip,
// zstd, xz and bzip2.
func NewTARArchiveReader(r io.Reader) (ArchiveReader, error) {
	dr, dc, c, err := decompress(r)
	if err != nil {
		return nil, err
	}

	log.Debugf("tar compression: %s", c)

	return &TARArchiveReader{tar.NewReader(dr), dc}, nil
}

// hasParentRef reports whether name contains a parent directory reference
// anywhere, including as a suffix of another segment like "foo../".
func hasParentRef(name string) bool {
	name = strings.ReplaceAll(name, `\`, "/")

	return strings.Contains(name, "../") || name == ".." || strings.HasSuffix(name, "/..")
}
