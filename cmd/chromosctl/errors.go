package main

import (
	"errors"
	"fmt"

	"chromos/internal/genome"
)

// describeError turns a genome error into a sentence for the terminal.
func describeError(err error) string {
	var ge *genome.Error
	if !errors.As(err, &ge) {
		return err.Error()
	}
	where := ge.Resource
	if where == "" {
		where = "genome"
	}
	gene := fmt.Sprintf("gene %d/%d/%d", ge.Gene.Type(), ge.Gene.Subtype(), ge.Gene.ID())
	switch ge.Key {
	case genome.KeyBadMarker:
		return fmt.Sprintf("%s is not a genome: missing format marker", where)
	case genome.KeyMissingSentinel:
		return fmt.Sprintf("%s is damaged: no end of genome marker", where)
	case genome.KeyTrailingData:
		return fmt.Sprintf("%s is damaged: %d bytes after the end of genome marker", where, ge.Length)
	case genome.KeyTruncatedGene:
		return fmt.Sprintf("%s is damaged: gene at offset %d is only %d bytes", where, ge.Offset, ge.Length)
	case genome.KeyGeneTooLong:
		return fmt.Sprintf("%s is damaged: %s is %d bytes long", where, gene, ge.Length)
	case genome.KeyMissingHeader:
		return fmt.Sprintf("%s has no header gene", where)
	case genome.KeyBadMoniker:
		return "parent monikers would corrupt the header gene"
	case genome.KeyResourceUnavailable:
		return fmt.Sprintf("cannot read %s: %v", where, ge.Err)
	case genome.KeyWriteFailed:
		return fmt.Sprintf("cannot write %s: %v", where, ge.Err)
	default:
		return ge.Error()
	}
}
