package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"bilifetch/pkg/feed"
	"bilifetch/pkg/logger"
)

const (
	snapshotFile = "result.json"
	dynamicDir   = "dynamic"
)

// Store persists the normalized post sequence and its media to a per-user
// directory tree:
//
//	{base}/result.json                 full post snapshot
//	{base}/dynamic/{date}_{id}/        one directory per post
//	    content.txt                    iff item.content is present
//	    description.txt                iff item.description is present
//	    info.json                      serialized item record
//	    {image basename}               downloaded media
type Store struct {
	baseDir string
	logger  logger.Logger
}

// NewStore creates a store rooted at baseDir, creating the directory tree
// if absent
func NewStore(baseDir string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	if err := os.MkdirAll(filepath.Join(baseDir, dynamicDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Store{
		baseDir: baseDir,
		logger:  log,
	}, nil
}

// BaseDir returns the store's root directory
func (s *Store) BaseDir() string {
	return s.baseDir
}

// DynamicDir returns the directory holding per-post subdirectories
func (s *Store) DynamicDir() string {
	return filepath.Join(s.baseDir, dynamicDir)
}

// SnapshotPath returns the path of the post snapshot file
func (s *Store) SnapshotPath() string {
	return filepath.Join(s.baseDir, snapshotFile)
}

// SaveSnapshot atomically writes the full post sequence. A failure here is
// fatal to the caller: the export's completeness contract depends on the
// snapshot, so a half-written file must never replace a prior one.
func (s *Store) SaveSnapshot(posts []feed.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.writeFileAtomic(s.SnapshotPath(), data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	s.logger.InfoWithFields("snapshot saved", map[string]interface{}{
		"path":  s.SnapshotPath(),
		"posts": len(posts),
	})

	return nil
}

// LoadSnapshot reads a previously saved post sequence
func (s *Store) LoadSnapshot() ([]feed.Post, error) {
	data, err := os.ReadFile(s.SnapshotPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var posts []feed.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return posts, nil
}

// HasSnapshot reports whether a snapshot file exists
func (s *Store) HasSnapshot() bool {
	_, err := os.Stat(s.SnapshotPath())
	return err == nil
}

// PostDir returns the directory for one post's files
func (s *Store) PostDir(post feed.Post) string {
	return filepath.Join(s.DynamicDir(), post.DirName())
}

// WritePostFiles creates the post's directory and writes its text and
// metadata side files. Creation is idempotent; existing media files in
// the directory are left alone.
func (s *Store) WritePostFiles(post feed.Post) error {
	dir := s.PostDir(post)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create post directory: %w", err)
	}

	if post.Item.Content != nil {
		if err := os.WriteFile(filepath.Join(dir, "content.txt"), []byte(*post.Item.Content), 0644); err != nil {
			return fmt.Errorf("failed to write content.txt: %w", err)
		}
	}

	if post.Item.Description != nil {
		if err := os.WriteFile(filepath.Join(dir, "description.txt"), []byte(*post.Item.Description), 0644); err != nil {
			return fmt.Errorf("failed to write description.txt: %w", err)
		}
	}

	info, err := json.Marshal(post.Item)
	if err != nil {
		return fmt.Errorf("failed to marshal info.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "info.json"), info, 0644); err != nil {
		return fmt.Errorf("failed to write info.json: %w", err)
	}

	return nil
}

// Exists reports whether a file is already present on disk
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// SaveFile atomically writes a downloaded payload to its destination,
// creating the parent directory if needed. The temp-then-rename discipline
// guarantees no truncated file is ever observable at the destination.
func (s *Store) SaveFile(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return s.writeFileAtomic(dest, data)
}

// writeFileAtomic writes data to a uniquely named temporary file in the
// destination's directory and renames it into place. The unique temp name
// keeps concurrent writers of the same destination from clobbering each
// other's in-progress data; last rename wins with an intact file.
func (s *Store) writeFileAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	if err := os.Rename(tempFile, dest); err != nil {
		os.Remove(tempFile) // Clean up temp file
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
