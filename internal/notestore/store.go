package notestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"voicenotes/models"
)

// ErrNotFound is returned when a deletion target does not exist.
var ErrNotFound = errors.New("note not found")

// ErrInvalidName is returned when a date bucket or folder name would escape
// the recordings tree.
var ErrInvalidName = errors.New("invalid note identifier")

// Store owns the on-disk note layout under its root directory:
//
//	<root>/<YYYY-MM-DD>/<folder>/
//	    <folder>.webm            raw audio blob
//	    <folder>_transcript.txt  trimmed transcript
//	    <folder>_summary.txt     one "[MM:SS] text" line per bullet
type Store struct {
	root string

	// nameMu serializes resolve+create so two concurrent requests with the
	// same base name cannot both claim the same folder.
	nameMu sync.Mutex
}

// New creates a Store rooted at the given directory. The directory itself is
// created lazily on first write.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the recordings root directory.
func (s *Store) Root() string {
	return s.root
}

// ReserveFolder resolves a collision-free folder name for baseName within
// dateBucket and creates the folder, holding the naming lock across the
// check and the create.
func (s *Store) ReserveFolder(baseName, dateBucket string) (string, error) {
	s.nameMu.Lock()
	defer s.nameMu.Unlock()

	name := s.ResolveFolderName(baseName, dateBucket)
	if err := validateComponent(dateBucket); err != nil {
		return "", err
	}
	if err := validateComponent(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(s.root, dateBucket, name), 0o755); err != nil {
		return "", fmt.Errorf("create note folder: %w", err)
	}
	return name, nil
}

// SaveAudio writes the raw audio blob into the note folder and returns the
// path of the written file. ext must include the leading dot, e.g. ".webm".
func (s *Store) SaveAudio(dateBucket, folderName, ext string, data []byte) (string, error) {
	if ext == "" {
		ext = ".webm"
	}
	path := filepath.Join(s.root, dateBucket, folderName, folderName+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	return path, nil
}

// SaveTranscript writes the transcript artifact for a note.
func (s *Store) SaveTranscript(dateBucket, folderName, transcript string) error {
	path := filepath.Join(s.root, dateBucket, folderName, folderName+"_transcript.txt")
	content := strings.TrimSpace(transcript) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// SaveSummary writes the serialized summary artifact for a note, one
// timestamped line per bullet.
func (s *Store) SaveSummary(dateBucket, folderName string, bullets []models.SummaryBullet) error {
	var b strings.Builder
	for _, bullet := range bullets {
		fmt.Fprintf(&b, "[%s] %s\n", bullet.Time, bullet.Text)
	}
	path := filepath.Join(s.root, dateBucket, folderName, folderName+"_summary.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// List enumerates stored notes, newest date bucket first and note names in
// ascending order within each bucket. Non-directory entries are skipped. A
// missing root yields an empty listing, not an error.
func (s *Store) List() ([]models.NoteInfo, error) {
	buckets, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.NoteInfo{}, nil
		}
		return nil, fmt.Errorf("read recordings root: %w", err)
	}

	var bucketNames []string
	for _, bucket := range buckets {
		if bucket.IsDir() {
			bucketNames = append(bucketNames, bucket.Name())
		}
	}
	// Lexicographic descending on YYYY-MM-DD equals chronological descending.
	sort.Sort(sort.Reverse(sort.StringSlice(bucketNames)))

	notes := []models.NoteInfo{}
	for _, bucketName := range bucketNames {
		entries, err := os.ReadDir(filepath.Join(s.root, bucketName))
		if err != nil {
			return nil, fmt.Errorf("read date bucket %s: %w", bucketName, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			notes = append(notes, models.NoteInfo{Date: bucketName, Name: entry.Name()})
		}
	}
	return notes, nil
}

// Delete removes every file inside the note folder, then the folder itself,
// and finally the parent date bucket when it becomes empty. Deletion is
// best-effort atomic: files are removed individually, and re-running Delete
// on a half-removed folder succeeds.
func (s *Store) Delete(dateBucket, folderName string) error {
	if err := validateComponent(dateBucket); err != nil {
		return err
	}
	if err := validateComponent(folderName); err != nil {
		return err
	}

	folder := filepath.Join(s.root, dateBucket, folderName)
	info, err := os.Stat(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("stat note folder: %w", err)
	}
	if !info.IsDir() {
		return ErrNotFound
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return fmt.Errorf("read note folder: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(folder, entry.Name())); err != nil {
			return fmt.Errorf("remove artifact %s: %w", entry.Name(), err)
		}
	}
	if err := os.Remove(folder); err != nil {
		return fmt.Errorf("remove note folder: %w", err)
	}

	// Drop the date bucket once its last note is gone.
	bucket := filepath.Join(s.root, dateBucket)
	remaining, err := os.ReadDir(bucket)
	if err == nil && len(remaining) == 0 {
		if err := os.Remove(bucket); err != nil {
			return fmt.Errorf("remove date bucket: %w", err)
		}
	}
	return nil
}

// validateComponent rejects path components that could escape the recordings
// tree when joined.
func validateComponent(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}
