package clrfile

import "cildisasm"

const (
	corILMethodTinyFormat  = 0x2
	corILMethodFatFormat   = 0x3
	corILMethodFormatMask  = 0x3
	corILMethodMoreSects   = 0x8
	corILMethodSectEHTable = 0x1
	corILMethodSectFatFmt  = 0x40
	corILMethodSectMoreSec = 0x80
)

// decodedBody is the parsed form of one method's RVA-addressed body:
// code bytes, declared max stack, the locals signature token, and any
// exception-handling clauses trailing the code.
type decodedBody struct {
	code           []byte
	maxStack       int
	localVarSigTok uint32
	clauses        []cil.ExceptionClause
}

func (a *Assembly) methodBodyHeader(rva uint32) (*decodedBody, error) {
	off := a.im.rvaToOffset(a.layout, rva)
	first, err := a.im.u8(off)
	if err != nil {
		return nil, err
	}

	var d decodedBody
	var codeOff, codeSize uint32

	switch first & corILMethodFormatMask {
	case corILMethodTinyFormat:
		d.maxStack = 8
		codeSize = uint32(first) >> 2
		codeOff = off + 1
	case corILMethodFatFormat:
		flagsSize, err := a.im.u16(off)
		if err != nil {
			return nil, err
		}
		headerWords := flagsSize >> 12
		maxStack, err := a.im.u16(off + 2)
		if err != nil {
			return nil, err
		}
		d.maxStack = int(maxStack)
		if codeSize, err = a.im.u32(off + 4); err != nil {
			return nil, err
		}
		if d.localVarSigTok, err = a.im.u32(off + 8); err != nil {
			return nil, err
		}
		headerSize := uint32(headerWords) * 4
		codeOff = off + headerSize

		if flagsSize&corILMethodMoreSects != 0 {
			secOff := (codeOff + codeSize + 3) &^ 3
			clauses, err := a.readEHSections(secOff)
			if err != nil {
				return nil, err
			}
			d.clauses = clauses
		}
	default:
		return nil, errBadMethodBody
	}

	code, err := a.im.bytesAt(codeOff, codeSize)
	if err != nil {
		return nil, err
	}
	d.code = code
	return &d, nil
}

func (a *Assembly) readEHSections(off uint32) ([]cil.ExceptionClause, error) {
	var out []cil.ExceptionClause
	for {
		kindByte, err := a.im.u8(off)
		if err != nil {
			return nil, err
		}
		if kindByte&0x3F != corILMethodSectEHTable {
			if kindByte&corILMethodSectMoreSec == 0 {
				return out, nil
			}
			// Unknown (non-EH) section we don't need; its own DataSize
			// lets us skip to the next one, same layout either format.
		}
		fat := kindByte&corILMethodSectFatFmt != 0
		var dataSize uint32
		var entryOff uint32
		if fat {
			b, err := a.im.bytesAt(off+1, 3)
			if err != nil {
				return nil, err
			}
			dataSize = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
			entryOff = off + 4
		} else {
			b, err := a.im.u8(off + 1)
			if err != nil {
				return nil, err
			}
			dataSize = uint32(b)
			entryOff = off + 4
		}

		if kindByte&0x3F == corILMethodSectEHTable {
			clauseSize := uint32(12)
			if fat {
				clauseSize = 24
			}
			count := (dataSize - 4) / clauseSize
			for i := uint32(0); i < count; i++ {
				cl, err := a.readEHClause(entryOff+i*clauseSize, fat)
				if err != nil {
					return nil, err
				}
				out = append(out, cl)
			}
		}

		if kindByte&corILMethodSectMoreSec == 0 {
			return out, nil
		}
		off = (entryOff + dataSize - 4 + 3) &^ 3
	}
}

func (a *Assembly) readEHClause(off uint32, fat bool) (cil.ExceptionClause, error) {
	var flags, tryOff, tryLen, handlerOff, handlerLen, classOrFilter uint32
	var err error
	if fat {
		if flags, err = a.im.u32(off); err != nil {
			return cil.ExceptionClause{}, err
		}
		if tryOff, err = a.im.u32(off + 4); err != nil {
			return cil.ExceptionClause{}, err
		}
		if tryLen, err = a.im.u32(off + 8); err != nil {
			return cil.ExceptionClause{}, err
		}
		if handlerOff, err = a.im.u32(off + 12); err != nil {
			return cil.ExceptionClause{}, err
		}
		if handlerLen, err = a.im.u32(off + 16); err != nil {
			return cil.ExceptionClause{}, err
		}
		if classOrFilter, err = a.im.u32(off + 20); err != nil {
			return cil.ExceptionClause{}, err
		}
	} else {
		f16, err := a.im.u16(off)
		if err != nil {
			return cil.ExceptionClause{}, err
		}
		flags = uint32(f16)
		to16, err := a.im.u16(off + 2)
		if err != nil {
			return cil.ExceptionClause{}, err
		}
		tryOff = uint32(to16)
		tl8, err := a.im.u8(off + 4)
		if err != nil {
			return cil.ExceptionClause{}, err
		}
		tryLen = uint32(tl8)
		ho16, err := a.im.u16(off + 5)
		if err != nil {
			return cil.ExceptionClause{}, err
		}
		handlerOff = uint32(ho16)
		hl8, err := a.im.u8(off + 7)
		if err != nil {
			return cil.ExceptionClause{}, err
		}
		handlerLen = uint32(hl8)
		if classOrFilter, err = a.im.u32(off + 8); err != nil {
			return cil.ExceptionClause{}, err
		}
	}

	cl := cil.ExceptionClause{
		TryOffset: int(tryOff), TryLength: int(tryLen),
		HandlerOffset: int(handlerOff), HandlerLength: int(handlerLen),
	}
	switch flags {
	case 0x0001:
		cl.Kind = cil.ClauseFilter
		cl.FilterOffset = int(classOrFilter)
	case 0x0002:
		cl.Kind = cil.ClauseFinally
	case 0x0004:
		cl.Kind = cil.ClauseFault
	default:
		cl.Kind = cil.ClauseCatch
		if rt := a.resolveTypeToken(classOrFilter); rt != nil {
			cl.CatchType = rt
		}
	}
	return cl, nil
}
