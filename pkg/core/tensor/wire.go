package tensor

// Wire is the wire-form Tensor message (spec.md §3, §6): an ordered list of
// dimensions plus exactly one populated dense payload variant.
//
// This is a tagged union, not a class hierarchy (spec.md §9): exactly one of
// the Floats/Ints/Bools/Complexes/Strings fields should be non-nil; Variant
// reports which.
type Wire struct {
	Dimensions []int

	Floats    []float32 `json:"floats,omitempty"`
	Ints      []int32   `json:"ints,omitempty"`
	Bools     []bool    `json:"bools,omitempty"`
	Complexes []int32   `json:"complex,omitempty"` // alternating real/imag, per spec.md §3
	Strings   [][]byte  `json:"strings,omitempty"`
}

// Variant reports which payload field is populated, or PayloadNone if none
// is (an InvalidTensorMessage at decode time).
func (w Wire) Variant() Payload {
	switch {
	case w.Floats != nil:
		return PayloadFloat
	case w.Ints != nil:
		return PayloadInt
	case w.Bools != nil:
		return PayloadBool
	case w.Complexes != nil:
		return PayloadComplex
	case w.Strings != nil:
		return PayloadString
	default:
		return PayloadNone
	}
}

// payloadLen returns the element count of whichever variant is populated.
// For Complexes, a pair of int32s is one element (spec.md §3: "paired
// int32s").
func (w Wire) payloadLen() int {
	switch w.Variant() {
	case PayloadFloat:
		return len(w.Floats)
	case PayloadInt:
		return len(w.Ints)
	case PayloadBool:
		return len(w.Bools)
	case PayloadComplex:
		return len(w.Complexes) / 2
	case PayloadString:
		return len(w.Strings)
	default:
		return 0
	}
}
