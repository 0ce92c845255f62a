package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// LineageRecord is written for every child produced by a breed.
type LineageRecord struct {
	VersionedRecord
	Child        string `json:"child"`
	Mother       string `json:"mother"`
	Father       string `json:"father"`
	Seed         uint64 `json:"seed"`
	RNG          string `json:"rng"`
	Crossovers   int    `json:"crossovers"`
	Mutations    int    `json:"mutations"`
	Cuts         int    `json:"cuts"`
	Duplications int    `json:"duplications"`
	ChildLength  int    `json:"child_length"`
	Fingerprint  string `json:"fingerprint"`
	CreatedAtUTC string `json:"created_at_utc"`
}

// GeneRow is one gene of a genome dump.
type GeneRow struct {
	Index      int    `csv:"index" json:"index"`
	Offset     int    `csv:"offset" json:"offset"`
	Length     int    `csv:"length" json:"length"`
	Type       int    `csv:"type" json:"type"`
	TypeName   string `csv:"type_name" json:"type_name"`
	Subtype    int    `csv:"subtype" json:"subtype"`
	ID         int    `csv:"id" json:"id"`
	Generation int    `csv:"generation" json:"generation"`
	SwitchOn   int    `csv:"switch_on" json:"switch_on"`
	Flags      string `csv:"flags" json:"flags"`
	Mutability int    `csv:"mutability" json:"mutability"`
	Variant    int    `csv:"variant" json:"variant"`
	Payload    string `csv:"payload" json:"payload"`
}
