package clrfile

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Table indices per ECMA-335 §II.22.
const (
	tblModule                 = 0
	tblTypeRef                = 1
	tblTypeDef                = 2
	tblFieldPtr               = 3
	tblField                  = 4
	tblMethodPtr              = 5
	tblMethodDef              = 6
	tblParamPtr               = 7
	tblParam                  = 8
	tblInterfaceImpl          = 9
	tblMemberRef              = 10
	tblConstant               = 11
	tblCustomAttribute        = 12
	tblFieldMarshal           = 13
	tblDeclSecurity           = 14
	tblClassLayout            = 15
	tblFieldLayout            = 16
	tblStandAloneSig          = 17
	tblEventMap               = 18
	tblEventPtr               = 19
	tblEvent                  = 20
	tblPropertyMap            = 21
	tblPropertyPtr            = 22
	tblProperty               = 23
	tblMethodSemantics        = 24
	tblMethodImpl             = 25
	tblModuleRef              = 26
	tblTypeSpec               = 27
	tblImplMap                = 28
	tblFieldRVA               = 29
	tblAssembly               = 32
	tblAssemblyProcessor      = 33
	tblAssemblyOS             = 34
	tblAssemblyRef            = 35
	tblAssemblyRefProcessor   = 36
	tblAssemblyRefOS          = 37
	tblFileMD                 = 38
	tblExportedType           = 39
	tblManifestResource       = 40
	tblNestedClass            = 41
	tblGenericParam           = 42
	tblMethodSpec             = 43
	tblGenericParamConstraint = 44
)

const (
	heapWideStrings = 1 << 0
	heapWideGUID    = 1 << 1
	heapWideBlob    = 1 << 2
)

// heaps pulls the #Strings/#Blob/#GUID/#US streams out of a metadataRoot
// and answers fixed-width-index questions for the table decoders.
type heaps struct {
	im            *image
	strings       streamHeader
	blob          streamHeader
	guid          streamHeader
	us            streamHeader
	haveStrings   bool
	haveBlob      bool
	haveGUID      bool
	haveUS        bool
	wideStrings   bool
	wideGUID      bool
	wideBlob      bool
	rowCounts     [64]uint32
}

func newHeaps(im *image, root *metadataRoot, tsh *tableStreamHeader) *heaps {
	h := &heaps{im: im, rowCounts: tsh.rowCounts}
	if s, ok := root.streams["#Strings"]; ok {
		h.strings, h.haveStrings = s, true
	}
	if s, ok := root.streams["#Blob"]; ok {
		h.blob, h.haveBlob = s, true
	}
	if s, ok := root.streams["#GUID"]; ok {
		h.guid, h.haveGUID = s, true
	}
	if s, ok := root.streams["#US"]; ok {
		h.us, h.haveUS = s, true
	}
	h.wideStrings = tsh.heapSizes&heapWideStrings != 0
	h.wideGUID = tsh.heapSizes&heapWideGUID != 0
	h.wideBlob = tsh.heapSizes&heapWideBlob != 0
	return h
}

// stringAt reads a NUL-terminated UTF-8 string from the #Strings heap.
func (h *heaps) stringAt(base uint32, index uint32) (string, error) {
	if index == 0 || !h.haveStrings {
		return "", nil
	}
	off := base + h.strings.offset + index
	var b strings.Builder
	for {
		c, err := h.im.u8(off)
		if err != nil {
			return "", err
		}
		if c == 0 {
			break
		}
		b.WriteByte(c)
		off++
	}
	return b.String(), nil
}

// blobAt reads a length-prefixed blob from the #Blob heap, per the
// compressed-integer encoding of ECMA-335 §II.23.2.
func (h *heaps) blobAt(base uint32, index uint32) ([]byte, error) {
	if index == 0 || !h.haveBlob {
		return nil, nil
	}
	off := base + h.blob.offset + index
	first, err := h.im.u8(off)
	if err != nil {
		return nil, err
	}

	var length uint32
	switch {
	case first&0x80 == 0:
		length = uint32(first)
		off++
	case first&0xC0 == 0x80:
		second, err := h.im.u8(off + 1)
		if err != nil {
			return nil, err
		}
		length = (uint32(first)&0x3F)<<8 | uint32(second)
		off += 2
	default:
		b, err := h.im.bytesAt(off+1, 3)
		if err != nil {
			return nil, err
		}
		length = (uint32(first)&0x1F)<<24 | uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
		off += 4
	}
	return h.im.bytesAt(off, length)
}

// userStringAt decodes a UTF-16LE string literal from the #US heap.
func (h *heaps) userStringAt(base uint32, token uint32) (string, error) {
	index := token &^ 0x70000000
	raw, err := h.blobAtOffset(base, h.us, index)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", nil
	}
	// The trailing byte is a flag (unused here), not UTF-16 data.
	body := raw
	if len(body)%2 == 1 {
		body = body[:len(body)-1]
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := dec.Bytes(body)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// blobAtOffset mirrors blobAt but against an explicit stream (used by
// userStringAt, since #US shares the #Blob heap's length-prefix format).
func (h *heaps) blobAtOffset(base uint32, s streamHeader, index uint32) ([]byte, error) {
	if index == 0 {
		return nil, nil
	}
	off := base + s.offset + index
	first, err := h.im.u8(off)
	if err != nil {
		return nil, err
	}
	var length uint32
	switch {
	case first&0x80 == 0:
		length = uint32(first)
		off++
	case first&0xC0 == 0x80:
		second, err := h.im.u8(off + 1)
		if err != nil {
			return nil, err
		}
		length = (uint32(first)&0x3F)<<8 | uint32(second)
		off += 2
	default:
		b, err := h.im.bytesAt(off+1, 3)
		if err != nil {
			return nil, err
		}
		length = (uint32(first)&0x1F)<<24 | uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
		off += 4
	}
	return h.im.bytesAt(off, length)
}

func (h *heaps) guidAt(base uint32, index uint32) ([]byte, error) {
	if index == 0 || !h.haveGUID {
		return nil, nil
	}
	off := base + h.guid.offset + (index-1)*16
	return h.im.bytesAt(off, 16)
}

func (h *heaps) stringIndexSize() uint32 {
	if h.wideStrings {
		return 4
	}
	return 2
}

func (h *heaps) guidIndexSize() uint32 {
	if h.wideGUID {
		return 4
	}
	return 2
}

func (h *heaps) blobIndexSize() uint32 {
	if h.wideBlob {
		return 4
	}
	return 2
}

// tableIndexSize returns the coded-index width for a set of candidate
// tables, per ECMA-335 §II.24.2.6: 2 bytes unless the tag-shifted row
// count of the largest candidate table overflows 16 bits.
func (h *heaps) tableIndexSize(tagBits uint, tables ...int) uint32 {
	var maxRows uint32
	for _, t := range tables {
		if h.rowCounts[t] > maxRows {
			maxRows = h.rowCounts[t]
		}
	}
	limit := uint32(1) << (16 - tagBits)
	if maxRows >= limit {
		return 4
	}
	return 2
}

func (h *heaps) simpleIndexSize(table int) uint32 {
	limit := uint32(1) << 16
	if h.rowCounts[table] >= limit {
		return 4
	}
	return 2
}
