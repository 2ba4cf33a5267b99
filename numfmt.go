package cil

import (
	"fmt"
	"strconv"
)

// formatG17 renders a binary64 in round-trip G17 form, invariant
// culture, per spec.md §4.5.
func formatG17(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}

// formatG9 renders a binary32 in round-trip G9 form, invariant
// culture, per spec.md §4.5.
func formatG9(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', 9, 32)
}

// formatHexWidth renders v as "0x" followed by digits hex nybbles,
// zero-padded, per spec.md §4.7's width-appropriate default-value
// rendering (2/4/8/16 digits).
func formatHexWidth(v uint64, digits int) string {
	return fmt.Sprintf("0x%0*X", digits, v)
}
