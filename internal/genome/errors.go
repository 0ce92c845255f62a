package genome

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a genome error.
type Kind int

const (
	KindFormat Kind = iota + 1
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Symbolic error keys. Presentation layers translate these into prose.
const (
	KeyBadMarker           = "genome.bad_marker"
	KeyMissingSentinel     = "genome.missing_sentinel"
	KeyTrailingData        = "genome.trailing_data"
	KeyTruncatedGene       = "genome.truncated_gene"
	KeyGeneTooLong         = "genome.gene_too_long"
	KeyMissingHeader       = "genome.missing_header"
	KeyBadMoniker          = "genome.bad_moniker"
	KeyResourceUnavailable = "genome.resource_unavailable"
	KeyWriteFailed         = "genome.write_failed"
)

var (
	ErrFormat = errors.New("genome format error")
	ErrIO     = errors.New("genome io error")
)

// Error carries a symbolic key and the context needed to describe it.
type Error struct {
	Kind     Kind
	Key      string
	Resource string
	Gene     GeneID
	Offset   int
	Length   int
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Key)
	if e.Resource != "" {
		fmt.Fprintf(&b, " resource=%s", e.Resource)
	}
	if e.Gene != NoGeneID && (e.Key == KeyGeneTooLong || e.Key == KeyTruncatedGene) {
		fmt.Fprintf(&b, " gene=%d/%d/%d", e.Gene.Type(), e.Gene.Subtype(), e.Gene.ID())
	}
	if e.Length > 0 {
		fmt.Fprintf(&b, " length=%d", e.Length)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrFormat:
		return e.Kind == KindFormat
	case ErrIO:
		return e.Kind == KindIO
	}
	return false
}

// Args returns the positional arguments a message formatter needs for Key.
func (e *Error) Args() []any {
	args := []any{e.Resource}
	if e.Gene != NoGeneID {
		args = append(args, e.Gene.Type(), e.Gene.Subtype(), e.Gene.ID())
	}
	if e.Length > 0 {
		args = append(args, e.Length)
	}
	return args
}

// NewFormatError builds a format error for the gene at offset.
func NewFormatError(key string, gene GeneID, offset, length int) *Error {
	return &Error{Kind: KindFormat, Key: key, Gene: gene, Offset: offset, Length: length}
}

func ioError(key, resource string, err error) *Error {
	return &Error{Kind: KindIO, Key: key, Resource: resource, Gene: NoGeneID, Err: err}
}

// BoundsError is the panic value raised when a cursor reads past its buffer.
// It signals a programming error, never a property of the data.
type BoundsError struct {
	Offset int
	Want   int
	Len    int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("genome cursor out of bounds: offset=%d want=%d len=%d", e.Offset, e.Want, e.Len)
}
