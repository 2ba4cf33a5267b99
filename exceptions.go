package cil

import "go.uber.org/zap"

// RegionKind enumerates the reconstructed exception-handling region
// kinds of spec.md §3.
type RegionKind int

const (
	RegionTry RegionKind = iota
	RegionCatch
	RegionFilterCatch
	RegionFilter
	RegionFinally
	RegionFault
)

// RegionSide is which edge of a region a marker represents.
type RegionSide int

const (
	RegionBegin RegionSide = iota
	RegionEnd
)

// RegionMarker is one reconstructed begin/end marker, keyed by byte
// offset in the map ReconstructRegions returns.
type RegionMarker struct {
	Kind      RegionKind
	Side      RegionSide
	CatchType TypeRef // valid only for RegionCatch
}

type tryRange struct {
	offset, end int
}

// ReconstructRegions turns a method's flat exception-clause list into
// a multimap from byte offset to the ordered region markers that open
// or close there, per spec.md §4.6. Markers sharing an offset are
// emitted in the input order of clauses.
func ReconstructRegions(clauses []ExceptionClause) map[int][]RegionMarker {
	markers := make(map[int][]RegionMarker)
	emit := func(offset int, m RegionMarker) {
		markers[offset] = append(markers[offset], m)
	}

	seenTryRanges := make(map[tryRange]bool)
	emitTry := func(c ExceptionClause) {
		r := tryRange{c.TryOffset, c.TryOffset + c.TryLength}
		if seenTryRanges[r] {
			return
		}
		seenTryRanges[r] = true
		emit(c.TryOffset, RegionMarker{Kind: RegionTry, Side: RegionBegin})
		emit(r.end, RegionMarker{Kind: RegionTry, Side: RegionEnd})
	}

	for _, c := range clauses {
		switch c.Kind {
		case ClauseCatch:
			emitTry(c)
			emit(c.HandlerOffset, RegionMarker{Kind: RegionCatch, Side: RegionBegin, CatchType: c.CatchType})
			emit(c.HandlerOffset+c.HandlerLength, RegionMarker{Kind: RegionCatch, Side: RegionEnd})

		case ClauseFinally:
			emitTry(c)
			emit(c.HandlerOffset, RegionMarker{Kind: RegionFinally, Side: RegionBegin})
			emit(c.HandlerOffset+c.HandlerLength, RegionMarker{Kind: RegionFinally, Side: RegionEnd})

		case ClauseFilter:
			emitTry(c)
			emit(c.FilterOffset, RegionMarker{Kind: RegionFilter, Side: RegionBegin})
			emit(c.HandlerOffset, RegionMarker{Kind: RegionFilter, Side: RegionEnd})
			emit(c.HandlerOffset, RegionMarker{Kind: RegionFilterCatch, Side: RegionBegin})
			emit(c.HandlerOffset+c.HandlerLength, RegionMarker{Kind: RegionFilterCatch, Side: RegionEnd})

		case ClauseFault:
			// Fault is reconstructed like Finally (one handler region
			// spanning the try's protected block) but keeps its own
			// RegionKind so emission renders the fault keyword.
			Logger().Debug("reconstructing Fault clause",
				zap.Int("try_offset", c.TryOffset), zap.Int("handler_offset", c.HandlerOffset))
			emitTry(c)
			emit(c.HandlerOffset, RegionMarker{Kind: RegionFault, Side: RegionBegin})
			emit(c.HandlerOffset+c.HandlerLength, RegionMarker{Kind: RegionFault, Side: RegionEnd})
		}
	}

	return markers
}
