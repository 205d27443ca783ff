// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store implements the split persistence scheme every stateful
// role uses: a compact "small state" blob plus, for each of the role's
// proving keys, a size-header/body pair. Circuit configuration (wasm or
// shared-object witness calculator, plus r1cs) is reconstructed from
// well-known relative paths rather than persisted.
package store

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	log "github.com/luxfi/log"
)

// ErrStateInconsistency is returned when save/load detects a truncated or
// mismatched buffer: a corrupt small-state digest, or a size header that
// does not match the body that follows it.
var ErrStateInconsistency = errors.New("store: state inconsistency on load")

// Paths centralizes the relative path conventions this engine's
// constructors and persistence layer share: role state lives at
// "<dir>/<name>.dat" plus "<name>.sN"/"<name>.pN" per proving key, while
// circuit artifacts live under "./circuits/<circuit>.so" and
// "./circuits/<circuit>.r1cs".
type Paths struct {
	Dir  string
	Name string
}

func (p Paths) base() string { return filepath.Join(p.Dir, p.Name) }

// SmallStatePath is "<dir>/<name>.dat".
func (p Paths) SmallStatePath() string { return p.base() + ".dat" }

// KeySizePath is "<dir>/<name>.sN" for the Nth proving key.
func (p Paths) KeySizePath(n int) string { return sizeSuffix(p.base(), n) }

// KeyBodyPath is "<dir>/<name>.pN" for the Nth proving key.
func (p Paths) KeyBodyPath(n int) string { return bodySuffix(p.base(), n) }

func sizeSuffix(base string, n int) string { return base + ".s" + itoa(n) }
func bodySuffix(base string, n int) string { return base + ".p" + itoa(n) }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// CircuitSharedObject is "./circuits/<name>.so", the compiled witness
// calculator for a circuit.
func CircuitSharedObject(name string) string {
	return filepath.Join("circuits", name+".so")
}

// CircuitR1CS is "./circuits/<name>.r1cs", the constraint system for a
// circuit.
func CircuitR1CS(name string) string {
	return filepath.Join("circuits", name+".r1cs")
}

// SaveSmallState writes data framed as [32-byte blake3 digest][data] to
// path, so a later LoadSmallState can detect truncation or bit rot without
// re-deriving every field from the role's other persisted parts.
func SaveSmallState(path string, data []byte) error {
	digest := blake3.Sum256(data)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(digest[:]); err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}

// LoadSmallState reads and verifies the digest written by SaveSmallState.
func LoadSmallState(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) < 32 {
		return nil, ErrStateInconsistency
	}
	digest, data := raw[:32], raw[32:]
	want := blake3.Sum256(data)
	if string(digest) != string(want[:]) {
		return nil, ErrStateInconsistency
	}
	return data, nil
}

// SaveProvingKey writes a proving key's body via its own WriteTo method,
// recording the body's byte length in a separate size-header file so
// LoadProvingKey can validate it read exactly as many bytes as were
// written.
func SaveProvingKey(paths Paths, index int, key io.WriterTo) error {
	bodyPath := paths.KeyBodyPath(index)
	f, err := os.Create(bodyPath)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := key.WriteTo(f)
	if err != nil {
		return err
	}

	var header [8]byte
	binary.BigEndian.PutUint64(header[:], uint64(n))
	return os.WriteFile(paths.KeySizePath(index), header[:], 0o644)
}

// LoadProvingKey reads a proving key's size header and body, returning
// ErrStateInconsistency if the body's actual length disagrees with the
// recorded header.
func LoadProvingKey(paths Paths, index int, key io.ReaderFrom) error {
	header, err := os.ReadFile(paths.KeySizePath(index))
	if err != nil {
		return err
	}
	if len(header) != 8 {
		return ErrStateInconsistency
	}
	wantLen := binary.BigEndian.Uint64(header)

	f, err := os.Open(paths.KeyBodyPath(index))
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := key.ReadFrom(f)
	if err != nil {
		return err
	}
	if uint64(n) != wantLen {
		return ErrStateInconsistency
	}
	return nil
}

var logger = log.NewTestLogger(log.InfoLevel)

// LogSave emits a single operational line noting how many proving keys a
// role persisted, the only logging this package does — callers in
// committee/issuer/user decide whether a save is worth a log line at all.
func LogSave(role string, keyCount int) {
	logger.Info("saved role state", "role", role, "keys", keyCount)
}
