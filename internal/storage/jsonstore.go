package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

var (
	// ErrNoSnapshot means there is nothing to restore; callers start empty.
	ErrNoSnapshot = errors.New("snapshot not found")
	// ErrCorruptSnapshot covers undecodable files, unknown formats and
	// signature mismatches.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// Signer signs and verifies snapshot payloads.
type Signer interface {
	Sign(data []byte) string
	Verify(data []byte, signature string) error
}

// envelope is the on-disk form. Signature covers the compact JSON encoding of
// Payload and is empty when no signer is configured.
type envelope struct {
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature,omitempty"`
}

// SaveSnapshot writes snap to path.tmp and renames it over path so a crash
// mid-write never leaves a truncated snapshot behind. signer may be nil.
func SaveSnapshot(path string, snap Snapshot, signer Signer) error {
	snap.Meta.Format = SnapshotFormat
	snap.Meta.Version = SnapshotVersion
	snap.Meta.Timestamp = time.Now().UTC()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	env := envelope{Payload: payload}
	if signer != nil {
		env.Signature = signer.Sign(payload)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot envelope: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot. With a signer, the
// signature must be present and valid. Without one, any signature is ignored.
func LoadSnapshot(path string, signer Signer) (Snapshot, error) {
	var snap Snapshot

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return snap, fmt.Errorf("%w: %s", ErrNoSnapshot, path)
	}
	if err != nil {
		return snap, fmt.Errorf("read snapshot: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return snap, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if len(env.Payload) == 0 {
		return snap, fmt.Errorf("%w: missing payload", ErrCorruptSnapshot)
	}

	var payload bytes.Buffer
	if err := json.Compact(&payload, env.Payload); err != nil {
		return snap, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	if signer != nil {
		if env.Signature == "" {
			return snap, fmt.Errorf("%w: unsigned snapshot", ErrCorruptSnapshot)
		}
		if err := signer.Verify(payload.Bytes(), env.Signature); err != nil {
			return snap, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
	}

	if err := json.Unmarshal(payload.Bytes(), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Meta.Format != SnapshotFormat || snap.Meta.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: format %q version %d", ErrCorruptSnapshot, snap.Meta.Format, snap.Meta.Version)
	}

	return snap, nil
}
