package genome

import (
	"fmt"

	"chromos/internal/codon"
)

// Identity is the organism state a query is evaluated against.
type Identity struct {
	Sex     Sex
	Age     byte
	Variant byte
}

// SwitchMode selects how a gene's switch-on age is matched.
type SwitchMode int

const (
	// SwitchExactAge matches genes that switch on at exactly the organism's age.
	SwitchExactAge SwitchMode = iota
	// SwitchAlways ignores the switch-on age; used by consumers that rescan
	// every tick.
	SwitchAlways
	// SwitchEmbryo matches genes that switch on at conception.
	SwitchEmbryo
	// SwitchUpToAge matches genes whose switch-on age is at or below the
	// organism's age.
	SwitchUpToAge
	// SwitchUnconditional bypasses every filter and matches on structure alone.
	SwitchUnconditional
)

func (m SwitchMode) String() string {
	switch m {
	case SwitchExactAge:
		return "exact"
	case SwitchAlways:
		return "always"
	case SwitchEmbryo:
		return "embryo"
	case SwitchUpToAge:
		return "up-to-age"
	case SwitchUnconditional:
		return "unconditional"
	default:
		return "unknown"
	}
}

// ParseSwitchMode is the inverse of SwitchMode.String.
func ParseSwitchMode(s string) (SwitchMode, error) {
	for m := SwitchExactAge; m <= SwitchUnconditional; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown switch mode: %q", s)
}

// NoStop disables a stop slot of a Query.
const NoStop = -1

// Query describes the genes FindNextGene looks for and where it gives up.
type Query struct {
	Type        int
	Subtype     int
	NumSubtypes int
	Mode        SwitchMode

	// A gene of StopType (and StopSubtype, unless NoStop) or of AltStopType
	// ends the search without being consumed.
	StopType    int
	StopSubtype int
	AltStopType int
}

func NewQuery(typ, subtype byte, numSubtypes int, mode SwitchMode) Query {
	return Query{
		Type:        int(typ),
		Subtype:     int(subtype),
		NumSubtypes: numSubtypes,
		Mode:        mode,
		StopType:    NoStop,
		StopSubtype: NoStop,
		AltStopType: NoStop,
	}
}

// StopAt returns q with the primary stop slot set.
func (q Query) StopAt(typ, subtype int) Query {
	q.StopType = typ
	q.StopSubtype = subtype
	return q
}

// AlsoStopAt returns q with the alternate stop type set.
func (q Query) AlsoStopAt(typ int) Query {
	q.AltStopType = typ
	return q
}

func (q Query) matches(h GeneHeader) bool {
	if int(h.Type) != q.Type {
		return false
	}
	sub := h.Subtype
	if q.NumSubtypes > 0 && q.NumSubtypes <= 256 {
		sub = codon.Wrap(sub, 0, byte(q.NumSubtypes-1))
	}
	return int(sub) == q.Subtype
}

// stops compares the stop subtype against the raw header subtype; NumSubtypes
// only wraps the match subtype.
func (q Query) stops(h GeneHeader) bool {
	if q.StopType != NoStop && int(h.Type) == q.StopType &&
		(q.StopSubtype == NoStop || int(h.Subtype) == q.StopSubtype) {
		return true
	}
	return q.AltStopType != NoStop && int(h.Type) == q.AltStopType
}

func switchedOn(h GeneHeader, mode SwitchMode, age byte) bool {
	if h.Type == TypeOrgan && h.Subtype == OrganOrgan {
		return true
	}
	switch mode {
	case SwitchExactAge:
		return h.SwitchOn == age
	case SwitchEmbryo:
		return h.SwitchOn == AgeEmbryo
	case SwitchUpToAge:
		return h.SwitchOn <= age
	default:
		return true
	}
}

func sexMatches(flags Flags, sex Sex) bool {
	if flags.Has(FlagIgnoreSex) {
		return true
	}
	male, female := flags.Has(FlagMaleOnly), flags.Has(FlagFemaleOnly)
	if !male && !female {
		return true
	}
	return (male && sex == SexMale) || (female && sex == SexFemale)
}

func variantMatches(variant, want byte) bool {
	return variant == 0 || variant == want
}

// Expressible reports whether a gene header passes the switch-on, sex and
// variant filters for who under mode.
func Expressible(h GeneHeader, mode SwitchMode, who Identity) bool {
	if mode == SwitchUnconditional {
		return true
	}
	return switchedOn(h, mode, who.Age) && sexMatches(h.Flags, who.Sex) && variantMatches(h.Variant, who.Variant)
}

// FindNextGene continues scanning from the cursor's position. On a match it
// returns true with the cursor on the first payload byte. It returns false at
// the end of the genome, or at a stop gene, in which case the cursor is left on
// that gene's marker so it is not consumed.
func FindNextGene(c *Cursor, q Query, who Identity) bool {
	for c.AdvanceToNextGene() {
		h := c.Header()
		if !Expressible(h, q.Mode, who) {
			continue
		}
		if q.stops(h) {
			c.RewindGene()
			return false
		}
		if q.matches(h) {
			c.SkipHeader()
			return true
		}
	}
	return false
}

// CountGenesOfType counts every gene of the given type and subtype in the
// buffer, regardless of switch-on age, sex or variant. The cursor is reset
// first and left on the end sentinel.
func CountGenesOfType(c *Cursor, typ, subtype byte, numSubtypes int) int {
	c.Reset()
	q := NewQuery(typ, subtype, numSubtypes, SwitchUnconditional)
	n := 0
	for FindNextGene(c, q, Identity{}) {
		n++
	}
	return n
}

// GeneInfo describes one gene record in a buffer.
type GeneInfo struct {
	Index  int
	Offset int
	Length int
	GeneHeader
}

// Genes lists every gene record of buf in order.
func Genes(buf []byte) []GeneInfo {
	c := NewCursor(buf)
	var out []GeneInfo
	for c.AdvanceToNextGene() {
		start := c.GeneStart()
		end := c.GeneEnd()
		out = append(out, GeneInfo{
			Index:      len(out),
			Offset:     start,
			Length:     end - start,
			GeneHeader: c.Header(),
		})
		c.pos = end
	}
	return out
}
