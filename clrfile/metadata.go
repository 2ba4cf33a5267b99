package clrfile

import "strings"

const metadataRootSignature = 0x424A5342 // "BSJB"

// cor20Header is the ECMA-335 §II.25.3.3 CLR runtime header.
type cor20Header struct {
	metadataRVA  uint32
	metadataSize uint32
	flags        uint32
	entryPoint   uint32
}

func (im *image) parseCOR20Header(layout *peLayout) (*cor20Header, error) {
	offset := im.rvaToOffset(layout, layout.comDirRVA)
	h := &cor20Header{}
	var err error
	if _, err = im.u32(offset); err != nil { // Cb, unused
		return nil, err
	}
	if h.flags, err = im.u32(offset + 16); err != nil {
		return nil, err
	}
	if h.entryPoint, err = im.u32(offset + 20); err != nil {
		return nil, err
	}
	if h.metadataRVA, err = im.u32(offset + 8); err != nil {
		return nil, err
	}
	if h.metadataSize, err = im.u32(offset + 12); err != nil {
		return nil, err
	}
	return h, nil
}

type streamHeader struct {
	offset uint32
	size   uint32
	name   string
}

type metadataRoot struct {
	baseOffset uint32
	version    string
	streams    map[string]streamHeader
}

func (im *image) parseMetadataRoot(layout *peLayout, h *cor20Header) (*metadataRoot, error) {
	base := im.rvaToOffset(layout, h.metadataRVA)

	sig, err := im.u32(base)
	if err != nil {
		return nil, err
	}
	if sig != metadataRootSignature {
		return nil, errBadMetadataRoot
	}
	versionLen, err := im.u32(base + 12)
	if err != nil {
		return nil, err
	}
	versionBytes, err := im.bytesAt(base+16, versionLen)
	if err != nil {
		return nil, err
	}
	version := strings.TrimRight(string(versionBytes), "\x00")

	off := base + 16 + versionLen
	if _, err = im.u8(off); err != nil { // Flags, reserved
		return nil, err
	}
	numStreams, err := im.u16(off + 2)
	if err != nil {
		return nil, err
	}
	off += 4

	streams := make(map[string]streamHeader, numStreams)
	for i := uint16(0); i < numStreams; i++ {
		so, err := im.u32(off)
		if err != nil {
			return nil, err
		}
		ssize, err := im.u32(off + 4)
		if err != nil {
			return nil, err
		}
		off += 8

		nameStart := off
		name := strings.Builder{}
		for {
			c, err := im.u8(off)
			if err != nil {
				return nil, err
			}
			off++
			if c == 0 {
				break
			}
			name.WriteByte(c)
		}
		// Stream-header names are padded to a 4-byte boundary.
		off = nameStart + ((off - nameStart + 3) / 4) * 4

		streams[name.String()] = streamHeader{offset: so, size: ssize, name: name.String()}
	}

	return &metadataRoot{baseOffset: base, version: version, streams: streams}, nil
}

// tableStreamHeader is the #~ stream's fixed header, per ECMA-335
// §II.24.2.6.
type tableStreamHeader struct {
	heapSizes   byte
	maskValid   uint64
	sorted      uint64
	rowCounts   [64]uint32
	rowsOffset  uint32 // file offset of the first table's first row
}

func (im *image) parseTableStreamHeader(offset uint32) (*tableStreamHeader, error) {
	h := &tableStreamHeader{}
	var err error
	if h.heapSizes, err = im.u8(offset + 6); err != nil {
		return nil, err
	}
	lo, err := im.u32(offset + 8)
	if err != nil {
		return nil, err
	}
	hi, err := im.u32(offset + 12)
	if err != nil {
		return nil, err
	}
	h.maskValid = uint64(lo) | uint64(hi)<<32

	lo, err = im.u32(offset + 16)
	if err != nil {
		return nil, err
	}
	hi, err = im.u32(offset + 20)
	if err != nil {
		return nil, err
	}
	h.sorted = uint64(lo) | uint64(hi)<<32

	rowOff := offset + 24
	for i := 0; i < 64; i++ {
		if h.maskValid&(1<<uint(i)) == 0 {
			continue
		}
		v, err := im.u32(rowOff)
		if err != nil {
			return nil, err
		}
		h.rowCounts[i] = v
		rowOff += 4
	}
	h.rowsOffset = rowOff
	return h, nil
}
