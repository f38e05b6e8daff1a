package db

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CurrentVersion is the snapshot schema written by this package.
// Blobs without a version are read as this version.
const CurrentVersion = 1

var errEmptySnapshot = errors.New("snapshot is not a JSON object")

// EncodeSnapshot serializes s, stamping the current version when s has none.
func EncodeSnapshot(s Snapshot) (string, error) {
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	normalize(&s)

	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return string(data), nil
}

// DecodeSnapshot parses a stored blob. It fails for malformed JSON, for
// anything that is not an object and for versions newer than CurrentVersion.
func DecodeSnapshot(data string) (Snapshot, error) {
	var s *Snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s == nil {
		return Snapshot{}, errEmptySnapshot
	}
	if s.Version > CurrentVersion {
		return Snapshot{}, fmt.Errorf("snapshot version %d is newer than supported version %d", s.Version, CurrentVersion)
	}
	if s.Version == 0 {
		s.Version = CurrentVersion
	}
	normalize(s)
	return *s, nil
}

// normalize replaces nil collections so they serialize as [] rather than null.
func normalize(s *Snapshot) {
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Activities == nil {
		s.Activities = []Activity{}
	}
	if s.Registrations == nil {
		s.Registrations = []Registration{}
	}
}
