package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no voice with the requested name exists.
var ErrNotFound = errors.New("voice not found")

// ErrNameTaken is returned by Save when a voice with the same normalized
// name is already indexed. Name uniqueness is primarily the naming policy's
// job; this is the storage-level backstop.
var ErrNameTaken = errors.New("voice name taken")

// fileExt is the extension every stored clip carries. Payloads are opaque;
// the extension only reflects what the gateway delivers (OGG/Opus).
const fileExt = ".ogg"

// Record identifies one stored clip. The three fields together form the
// on-disk filename: {name}_{authorHandle}_{mediaID}.ogg.
type Record struct {
	Name         string
	AuthorHandle string
	MediaID      string
}

// Entry is one row of a store listing.
type Entry struct {
	Name         string
	AuthorHandle string
}

// encodeFilename renders the composite-key filename for a record.
func encodeFilename(r Record) string {
	return r.Name + "_" + r.AuthorHandle + "_" + r.MediaID + fileExt
}

// parseFilename decomposes a composite-key filename back into a Record.
// The media ID may itself contain underscores (it is gateway-assigned and
// opaque), so only the first two segments are split off.
func parseFilename(filename string) (Record, error) {
	base, ok := strings.CutSuffix(filename, fileExt)
	if !ok {
		return Record{}, fmt.Errorf("unexpected extension on %q", filename)
	}
	parts := strings.SplitN(base, "_", 3)
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return Record{}, fmt.Errorf("malformed voice filename %q", filename)
	}
	return Record{Name: parts[0], AuthorHandle: parts[1], MediaID: parts[2]}, nil
}
