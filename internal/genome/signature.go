package genome

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

type Summary struct {
	Genes      int            `json:"genes" yaml:"genes"`
	Length     int            `json:"length" yaml:"length"`
	Mutable    int            `json:"mutable" yaml:"mutable"`
	Duplicable int            `json:"duplicable" yaml:"duplicable"`
	Cuttable   int            `json:"cuttable" yaml:"cuttable"`
	Clones     int            `json:"clones" yaml:"clones"`
	ByType     map[string]int `json:"by_type" yaml:"by_type"`
}

type Signature struct {
	Fingerprint string  `json:"fingerprint" yaml:"fingerprint"`
	Summary     Summary `json:"summary" yaml:"summary"`
}

// ComputeSignature fingerprints the ordered gene identities of buf. Payload
// codons do not contribute, so mutated siblings share a fingerprint while a cut
// or duplication changes it.
func ComputeSignature(buf []byte) Signature {
	summary := Summary{Length: len(buf), ByType: make(map[string]int)}
	h := sha1.New()
	var key [4]byte
	for _, info := range Genes(buf) {
		summary.Genes++
		summary.ByType[TypeName(info.Type)]++
		if info.Flags.Has(FlagMutable) {
			summary.Mutable++
		}
		if info.Flags.Has(FlagDuplicable) {
			summary.Duplicable++
		}
		if info.Flags.Has(FlagCuttable) {
			summary.Cuttable++
		}
		if info.Generation > 0 {
			summary.Clones++
		}
		binary.BigEndian.PutUint32(key[:], uint32(info.Identity()))
		h.Write(key[:])
	}
	return Signature{Fingerprint: hex.EncodeToString(h.Sum(nil)), Summary: summary}
}

// TypeName names a gene type for reports.
func TypeName(t byte) string {
	switch t {
	case TypeBrain:
		return "brain"
	case TypeBiochemistry:
		return "biochemistry"
	case TypeCreature:
		return "creature"
	case TypeOrgan:
		return "organ"
	default:
		return fmt.Sprintf("type%d", t)
	}
}
