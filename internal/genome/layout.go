package genome

import "chromos/internal/codon"

// Gene header field offsets, relative to the first byte after the start marker.
const (
	offType = iota
	offSubtype
	offID
	offGeneration
	offSwitchOn
	offFlags
	offMutability
	offVariant

	// HeaderLen is the number of fixed header bytes following the start marker.
	HeaderLen
)

// GenerationOffset locates the generation field after the start marker.
const GenerationOffset = offGeneration

// MonikerLen is the fixed width of each lineage moniker in the header gene.
const MonikerLen = 32

// DefaultMaxGeneLength bounds a single gene record including its marker. No
// real gene comes close; anything longer is corrupt input.
const DefaultMaxGeneLength = 1024

// Gene types.
const (
	TypeBrain        byte = 0
	TypeBiochemistry byte = 1
	TypeCreature     byte = 2
	TypeOrgan        byte = 3

	NumGeneTypes = 4
)

// Creature subtypes.
const (
	CreatureStimulus   byte = 0
	CreatureGenus      byte = 1
	CreatureAppearance byte = 2
	CreaturePose       byte = 3
	CreatureGait       byte = 4
	CreatureInstinct   byte = 5
	CreaturePigment    byte = 6

	NumCreatureSubtypes = 7
)

// Organ subtypes.
const (
	OrganOrgan byte = 0

	NumOrganSubtypes = 1
)

// headerGene payload layout: genus codon, mother moniker, father moniker.
const (
	headerGenusOff  = 0
	headerMotherOff = 1
	headerFatherOff = headerMotherOff + MonikerLen
	headerPayload   = headerFatherOff + MonikerLen
)

// Flags is the gene flag byte.
type Flags byte

const (
	FlagMutable Flags = 1 << iota
	FlagDuplicable
	FlagCuttable
	FlagMaleOnly
	FlagFemaleOnly
	FlagIgnoreSex
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Sex of an organism. Zero means undetermined and only matches sex-neutral genes.
type Sex byte

const (
	SexUndetermined Sex = 0
	SexMale         Sex = 1
	SexFemale       Sex = 2
)

func (s Sex) String() string {
	switch s {
	case SexMale:
		return "male"
	case SexFemale:
		return "female"
	default:
		return "undetermined"
	}
}

// Developmental ages.
const (
	AgeEmbryo byte = iota
	AgeBaby
	AgeChild
	AgeAdolescent
	AgeYouth
	AgeAdult
	AgeOld
	AgeSenile
)

// GeneID is the 24-bit identity key type<<16 | subtype<<8 | id.
type GeneID uint32

// NoGeneID never matches a real identity.
const NoGeneID GeneID = 1 << 31

func MakeGeneID(typ, subtype, id byte) GeneID {
	return GeneID(typ)<<16 | GeneID(subtype)<<8 | GeneID(id)
}

func (g GeneID) Type() byte    { return byte(g >> 16) }
func (g GeneID) Subtype() byte { return byte(g >> 8) }
func (g GeneID) ID() byte      { return byte(g) }

// minGeneLen is the shortest legal record: marker plus header.
const minGeneLen = codon.TokenSize + HeaderLen
