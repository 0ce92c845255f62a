package storage

import (
	"encoding/json"
	"errors"

	"chromos/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Versioned stamps the current schema and codec versions.
func Versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeLineage(record model.LineageRecord) ([]byte, error) {
	return json.Marshal(record)
}

func DecodeLineage(data []byte) (model.LineageRecord, error) {
	var record model.LineageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.LineageRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.LineageRecord{}, err
	}
	return record, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
