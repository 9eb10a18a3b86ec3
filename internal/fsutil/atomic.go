package fsutil

import (
	"fmt"
	"os"
)

// WriteFileAtomic writes data to name via a sibling temporary file and
// a rename. Readers either see the old contents or the new contents,
// never a partial write, and a failed write leaves nothing under the
// final name.
func WriteFileAtomic(fs FileSystem, name string, data []byte, perm os.FileMode) error {
	tmp := name + ".tmp"
	if err := fs.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := fs.Rename(tmp, name); err != nil {
		fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
