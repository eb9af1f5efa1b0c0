// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package ml

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

type artifactPayload struct {
	Weights []float64
	Note    string
}

func TestArtifactStoreRoundTrip(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}

	saved := artifactPayload{Weights: []float64{1.5, -2, 0.25}, Note: "v1"}
	trainedAt := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	if err := store.Save("demo", &saved, ArtifactMetadata{TrainedAt: trainedAt, SampleCount: 12}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var loaded artifactPayload
	found, err := store.Load("demo", &loaded)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("artifact not found after save")
	}
	if !reflect.DeepEqual(loaded, saved) {
		t.Errorf("loaded %+v, want %+v", loaded, saved)
	}

	meta, err := store.Metadata("demo")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta == nil {
		t.Fatal("metadata missing")
	}
	if meta.Name != "demo" || meta.SampleCount != 12 || !meta.TrainedAt.Equal(trainedAt) {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Checksum == "" || meta.SizeBytes <= 0 || meta.SavedAt.IsZero() {
		t.Errorf("derived metadata fields not set: %+v", meta)
	}
}

func TestArtifactStoreMissing(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}

	var payload artifactPayload
	found, err := store.Load("absent", &payload)
	if err != nil {
		t.Errorf("missing artifact: got err %v, want nil", err)
	}
	if found {
		t.Error("found = true for missing artifact")
	}

	meta, err := store.Metadata("absent")
	if err != nil || meta != nil {
		t.Errorf("missing metadata: got (%v, %v), want (nil, nil)", meta, err)
	}
}

func TestArtifactStoreRejectsCorruptPayload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(dir)
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}

	if err := store.Save("demo", &artifactPayload{Note: "ok"}, ArtifactMetadata{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Flip the payload on disk; the checksum in the sidecar no longer matches.
	path := filepath.Join(dir, "demo.gob.gz")
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("corrupt artifact: %v", err)
	}

	var payload artifactPayload
	if _, err := store.Load("demo", &payload); err == nil {
		t.Error("corrupt artifact loaded without error")
	}
}

func TestArtifactStoreOverwrite(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}

	if err := store.Save("demo", &artifactPayload{Note: "first"}, ArtifactMetadata{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save("demo", &artifactPayload{Note: "second"}, ArtifactMetadata{}); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	var loaded artifactPayload
	if _, err := store.Load("demo", &loaded); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Note != "second" {
		t.Errorf("Note = %q, want %q", loaded.Note, "second")
	}
}
