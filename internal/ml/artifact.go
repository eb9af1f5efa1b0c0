// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package ml

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// ArtifactMetadata describes a stored model artifact.
type ArtifactMetadata struct {
	// Name is the model identifier ("performance" or "risk").
	Name string `json:"name"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the artifact was written.
	SavedAt time.Time `json:"saved_at"`

	// SampleCount is the number of training rows.
	SampleCount int `json:"sample_count"`

	// Checksum is the SHA-256 checksum of the compressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// ArtifactStore persists model state as gob-encoded, gzip-compressed files
// with a JSON metadata sidecar. One artifact per model name; saving
// overwrites, never merges. Safe for concurrent use.
type ArtifactStore struct {
	baseDir string
	mu      sync.Mutex
}

// NewArtifactStore creates a store rooted at baseDir, creating it if needed.
func NewArtifactStore(baseDir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &ArtifactStore{baseDir: baseDir}, nil
}

func (s *ArtifactStore) dataPath(name string) string {
	return filepath.Join(s.baseDir, name+".gob.gz")
}

func (s *ArtifactStore) metaPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

// Save serializes the payload and writes it atomically (temp file + rename)
// along with its metadata sidecar.
func (s *ArtifactStore) Save(name string, payload any, meta ArtifactMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(payload); err != nil {
		return fmt.Errorf("encode model %s: %w", name, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compress model %s: %w", name, err)
	}

	sum := sha256.Sum256(buf.Bytes())
	meta.Name = name
	meta.SavedAt = time.Now().UTC()
	meta.Checksum = hex.EncodeToString(sum[:])
	meta.SizeBytes = int64(buf.Len())

	if err := writeAtomic(s.dataPath(name), buf.Bytes()); err != nil {
		return fmt.Errorf("write model %s: %w", name, err)
	}

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata %s: %w", name, err)
	}
	if err := writeAtomic(s.metaPath(name), metaBytes); err != nil {
		return fmt.Errorf("write metadata %s: %w", name, err)
	}

	return nil
}

// Load restores a payload saved under name. Returns (false, nil) when no
// artifact exists, which callers treat as "stay untrained". A checksum
// mismatch is an error: a corrupt artifact must not silently load.
func (s *ArtifactStore) Load(name string, payload any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.dataPath(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read model %s: %w", name, err)
	}

	if meta, err := s.readMetadata(name); err == nil && meta.Checksum != "" {
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != meta.Checksum {
			return false, fmt.Errorf("model %s: checksum mismatch", name)
		}
	}

	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("decompress model %s: %w", name, err)
	}
	defer gz.Close() //nolint:errcheck // read-only close

	if err := gob.NewDecoder(gz).Decode(payload); err != nil {
		return false, fmt.Errorf("decode model %s: %w", name, err)
	}

	return true, nil
}

// Metadata returns the stored metadata for name, or (nil, nil) when no
// artifact exists.
func (s *ArtifactStore) Metadata(name string) (*ArtifactMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.readMetadata(name)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *ArtifactStore) readMetadata(name string) (*ArtifactMetadata, error) {
	data, err := os.ReadFile(s.metaPath(name))
	if err != nil {
		return nil, err
	}
	meta := &ArtifactMetadata{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", name, err)
	}
	return meta, nil
}

// writeAtomic writes via a temp file and rename so a crash mid-write never
// leaves a truncated artifact.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()           //nolint:errcheck // best effort on error path
		os.Remove(tmpName)    //nolint:errcheck // best effort on error path
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort on error path
		return err
	}

	return os.Rename(tmpName, path)
}
