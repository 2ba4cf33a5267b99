// Package clrfile is a from-disk metadata provider: it memory-maps a
// .NET assembly image, walks its PE/COFF and ECMA-335 metadata
// structures, and exposes a cil.Provider backed by the decoded tables.
package clrfile

import (
	"encoding/binary"
	"errors"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

var (
	errOutsideBoundary = errors.New("clrfile: read outside file boundary")
	errNotPE           = errors.New("clrfile: not a PE image")
	errNoCLRHeader     = errors.New("clrfile: image carries no CLR runtime header")
	errBadMetadataRoot = errors.New("clrfile: metadata root signature mismatch")
	errBadMethodBody   = errors.New("clrfile: unrecognized method body format")
)

// image is the memory-mapped byte view every header/table reader pulls
// from; it is never copied wholesale into a buffer.
type image struct {
	data mmap.MMap
	f    *os.File
}

func openImage(path string) (*image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &image{data: data, f: f}, nil
}

func (im *image) close() error {
	if err := im.data.Unmap(); err != nil {
		im.f.Close()
		return err
	}
	return im.f.Close()
}

func (im *image) size() uint32 { return uint32(len(im.data)) }

func (im *image) bytesAt(offset, size uint32) ([]byte, error) {
	total := offset + size
	if (total > offset) != (size > 0) {
		return nil, errOutsideBoundary
	}
	if offset >= im.size() || total > im.size() {
		return nil, errOutsideBoundary
	}
	return im.data[offset : offset+size], nil
}

func (im *image) u8(offset uint32) (uint8, error) {
	b, err := im.bytesAt(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (im *image) u16(offset uint32) (uint16, error) {
	b, err := im.bytesAt(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (im *image) u32(offset uint32) (uint32, error) {
	b, err := im.bytesAt(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}
