package app

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type compression int

const (
	cmpGzip compression = iota
	cmpZstd
	cmpXz
	cmpBzip2
	cmpNone
)

func (c compression) String() string {
	switch c {
	case cmpGzip:
		return "gzip"
	case cmpZstd:
		return "zstd"
	case cmpXz:
		return "xz"
	case cmpBzip2:
		return "bzip2"
	}

	return "none"
}

var cmpHeaders = [...][]byte{
	cmpGzip:  {0x1F, 0x8B, 0x08},
	cmpZstd:  {0x28, 0xB5, 0x2F, 0xFD},
	cmpXz:    {0xFD, '7', 'z', 'X', 'Z', 0x00},
	cmpBzip2: {'B', 'Z', 'h'},
}

func detectCompression(b []byte) compression {
	for c, h := range cmpHeaders {
		if len(b) < len(h) {
			continue
		}
		if bytes.Equal(h, b[:len(h)]) {
			return compression(c)
		}
	}
	return cmpNone
}

// decompress sniffs the stream's magic bytes and returns a reader over the
// decompressed contents. The returned closer releases decoder state only,
// never r itself.
func decompress(r io.Reader) (io.Reader, io.Closer, compression, error) {
	br := bufio.NewReader(r)

	// short streams are handled by the tar reader
	b, _ := br.Peek(6)

	c := detectCompression(b)
	switch c {
	case cmpGzip:
		g, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, c, badFormat(err)
		}
		return g, g, c, nil
	case cmpZstd:
		d, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, c, badFormat(err)
		}
		return d, closerFunc(func() error { d.Close(); return nil }), c, nil
	case cmpXz:
		x, err := xz.NewReader(br)
		if err != nil {
			return nil, nil, c, badFormat(err)
		}
		return x, nopCloser, c, nil
	case cmpBzip2:
		return bzip2.NewReader(br), nopCloser, c, nil
	}

	return br, nopCloser, c, nil
}

type closerFunc func() error

func (fn closerFunc) Close() error { return fn() }

var nopCloser = closerFunc(func() error { return nil })
