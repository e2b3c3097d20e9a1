package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"bilifetch/pkg/feed"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func strPtr(s string) *string { return &s }

func TestSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)

	posts := []feed.Post{
		{
			ID:        "100",
			Timestamp: 1700000000,
			Kind:      feed.KindPlain,
			Item: feed.Inner{
				Description: strPtr("hello"),
				Pictures:    []string{"https://i0.example.com/a.jpg"},
			},
		},
		{
			ID:        "101",
			Timestamp: 1700000100,
			Kind:      feed.KindForward,
			Item:      feed.Inner{Content: strPtr("fwd"), Pictures: []string{}},
		},
	}

	if err := store.SaveSnapshot(posts); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	if !store.HasSnapshot() {
		t.Error("Expected snapshot to exist")
	}

	loaded, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("Failed to load snapshot: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(loaded))
	}
	if loaded[0].ID != "100" || loaded[1].ID != "101" {
		t.Errorf("Post order not preserved: %s, %s", loaded[0].ID, loaded[1].ID)
	}
	if loaded[0].Item.Description == nil || *loaded[0].Item.Description != "hello" {
		t.Errorf("Description lost in round trip: %v", loaded[0].Item.Description)
	}
	if loaded[1].Kind != feed.KindForward {
		t.Errorf("Kind lost in round trip: %s", loaded[1].Kind)
	}
}

func TestSaveSnapshotLeavesNoTempFile(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveSnapshot([]feed.Post{}); err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}

	entries, err := os.ReadDir(store.BaseDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if entry.Name() != "result.json" && entry.Name() != "dynamic" {
			t.Errorf("Unexpected file left behind: %s", entry.Name())
		}
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.LoadSnapshot(); err == nil {
		t.Error("Expected error for missing snapshot")
	}
	if store.HasSnapshot() {
		t.Error("Expected no snapshot")
	}
}

func TestWritePostFiles(t *testing.T) {
	store := newTestStore(t)

	post := feed.Post{
		ID:        "200",
		Timestamp: 1700000000,
		Kind:      feed.KindPlain,
		Item: feed.Inner{
			Description: strPtr("the description"),
			Content:     strPtr("the content"),
			Pictures:    []string{},
		},
	}

	if err := store.WritePostFiles(post); err != nil {
		t.Fatalf("Failed to write post files: %v", err)
	}

	dir := store.PostDir(post)

	content, err := os.ReadFile(filepath.Join(dir, "content.txt"))
	if err != nil {
		t.Fatalf("Failed to read content.txt: %v", err)
	}
	if string(content) != "the content" {
		t.Errorf("Unexpected content.txt: %s", content)
	}

	desc, err := os.ReadFile(filepath.Join(dir, "description.txt"))
	if err != nil {
		t.Fatalf("Failed to read description.txt: %v", err)
	}
	if string(desc) != "the description" {
		t.Errorf("Unexpected description.txt: %s", desc)
	}

	info, err := os.ReadFile(filepath.Join(dir, "info.json"))
	if err != nil {
		t.Fatalf("Failed to read info.json: %v", err)
	}
	var item feed.Inner
	if err := json.Unmarshal(info, &item); err != nil {
		t.Fatalf("info.json is not valid JSON: %v", err)
	}
	if item.Description == nil || *item.Description != "the description" {
		t.Errorf("info.json lost description: %v", item.Description)
	}
}

func TestWritePostFilesOmitsAbsentText(t *testing.T) {
	store := newTestStore(t)

	post := feed.Post{
		ID:        "201",
		Timestamp: 1700000000,
		Kind:      feed.KindVideoSubmission,
		Item:      feed.Inner{Title: "a video", Pictures: []string{"https://i0.example.com/c.jpg"}},
	}

	if err := store.WritePostFiles(post); err != nil {
		t.Fatalf("Failed to write post files: %v", err)
	}

	dir := store.PostDir(post)

	// No text fields, no text side files
	if _, err := os.Stat(filepath.Join(dir, "content.txt")); !os.IsNotExist(err) {
		t.Error("content.txt written for post without content")
	}
	if _, err := os.Stat(filepath.Join(dir, "description.txt")); !os.IsNotExist(err) {
		t.Error("description.txt written for post without description")
	}
	if _, err := os.Stat(filepath.Join(dir, "info.json")); err != nil {
		t.Error("info.json missing")
	}
}

func TestWritePostFilesIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	post := feed.Post{
		ID:        "202",
		Timestamp: 1700000000,
		Kind:      feed.KindPlain,
		Item:      feed.Inner{Content: strPtr("text"), Pictures: []string{}},
	}

	if err := store.WritePostFiles(post); err != nil {
		t.Fatalf("First write failed: %v", err)
	}

	// A pre-existing media file must survive a second run
	mediaPath := filepath.Join(store.PostDir(post), "image.jpg")
	if err := os.WriteFile(mediaPath, []byte("media"), 0644); err != nil {
		t.Fatalf("Failed to seed media file: %v", err)
	}

	if err := store.WritePostFiles(post); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	data, err := os.ReadFile(mediaPath)
	if err != nil || string(data) != "media" {
		t.Errorf("Media file not preserved across runs: %v", err)
	}
}

func TestConcurrentSaveFileSameDestination(t *testing.T) {
	store := newTestStore(t)
	dest := filepath.Join(store.DynamicDir(), "post", "image.jpg")

	// Several writers racing on one destination must never corrupt it:
	// whichever rename lands last, the file holds one writer's full payload.
	payloads := [][]byte{
		[]byte("payload from writer 0"),
		[]byte("payload from writer 1"),
		[]byte("payload from writer 2"),
		[]byte("payload from writer 3"),
	}

	var wg sync.WaitGroup
	for _, payload := range payloads {
		wg.Add(1)
		go func(data []byte) {
			defer wg.Done()
			if err := store.SaveFile(dest, data); err != nil {
				t.Errorf("SaveFile failed: %v", err)
			}
		}(payload)
	}
	wg.Wait()

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Failed to read destination: %v", err)
	}
	intact := false
	for _, payload := range payloads {
		if string(data) == string(payload) {
			intact = true
			break
		}
	}
	if !intact {
		t.Errorf("Destination holds none of the written payloads: %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(dest))
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if entry.Name() != "image.jpg" {
			t.Errorf("Temporary file left behind: %s", entry.Name())
		}
	}
}

func TestExistsAndSaveFile(t *testing.T) {
	store := newTestStore(t)

	dest := filepath.Join(store.DynamicDir(), "sub", "file.jpg")
	if store.Exists(dest) {
		t.Error("Expected file to not exist yet")
	}

	if err := store.SaveFile(dest, []byte("payload")); err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	if !store.Exists(dest) {
		t.Error("Expected file to exist after save")
	}

	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "payload" {
		t.Errorf("Unexpected file contents: %s (%v)", data, err)
	}

	// Directories never count as existing files
	if store.Exists(filepath.Dir(dest)) {
		t.Error("Exists must be false for directories")
	}
}
