package notestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// defaultNameFormat names a note by its wall-clock time when the client did
// not supply one, e.g. "note_14-32-05".
const defaultNameFormat = "note_15-04-05"

// ResolveFolderName returns the first collision-free folder name for baseName
// within dateBucket. The base name is trimmed, and an empty name falls back to
// a timestamp-derived default. Existing folders cause " 1", " 2", ... suffixes
// to be appended until an unused name is found. Resolution never creates the
// folder; callers that need resolve-and-create as a unit should use
// ReserveFolder, which holds the store's naming lock across both steps.
func (s *Store) ResolveFolderName(baseName, dateBucket string) string {
	name := strings.TrimSpace(baseName)
	if name == "" {
		name = time.Now().Format(defaultNameFormat)
	}

	candidate := name
	for i := 1; s.folderExists(dateBucket, candidate); i++ {
		candidate = fmt.Sprintf("%s %d", name, i)
	}
	return candidate
}

func (s *Store) folderExists(dateBucket, name string) bool {
	_, err := os.Stat(filepath.Join(s.root, dateBucket, name))
	return err == nil
}
