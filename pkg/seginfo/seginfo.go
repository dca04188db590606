// Package seginfo names and discovers log segment files.
//
// Filename format: <prefix><id>.log, where id is a fixed-width, zero-padded
// decimal segment identifier. The fixed width guarantees lexicographic
// directory listings sort identically to numeric segment-id order, so the
// active segment is always the last name produced by a sorted directory
// scan. This resolves spec's open question about mixed 0.log/timestamp
// naming by using one uniform numeric scheme end to end.
//
// Example filenames (empty prefix, width 20; with the store's default
// prefix "segment" they read segment00000000000000000000.log and so on):
//
//	00000000000000000000.log
//	00000000000000000001.log
//	00000000001700000000.log
package seginfo

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ignitedb/ignite/pkg/filesys"
)

// Width is the zero-padded digit count used for every segment id. It must
// be wide enough that strconv.FormatUint never truncates; 20 digits covers
// the full uint64 range.
const Width = 20

// Extension is the fixed suffix every segment file carries.
const Extension = ".log"

// GenerateName formats the on-disk filename for segment id under prefix.
func GenerateName(id uint64, prefix string) string {
	return fmt.Sprintf("%s%0*d%s", prefix, Width, id, Extension)
}

// ListSegments returns every segment filename (not full path) found under
// dir, sorted so that the last element is the most recently created
// segment. An empty, non-existent directory yields an empty, nil-error
// result.
func ListSegments(dir, prefix string) ([]string, error) {
	pattern := filepath.Join(dir, prefix+strings.Repeat("?", Width)+Extension)

	matches, err := filesys.ReadDir(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments with pattern %s: %w", pattern, err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}

	slices.Sort(names)
	return names, nil
}

// ParseSegmentID extracts the numeric id encoded in filename.
func ParseSegmentID(filename, prefix string) (uint64, error) {
	if !strings.HasPrefix(filename, prefix) || !strings.HasSuffix(filename, Extension) {
		return 0, fmt.Errorf("filename %s does not match prefix %q / extension %q", filename, prefix, Extension)
	}

	core := strings.TrimSuffix(strings.TrimPrefix(filename, prefix), Extension)
	id, err := strconv.ParseUint(core, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse segment id from %s: %w", filename, err)
	}

	return id, nil
}
