package archive

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"
)

// Attachment describes one inbound image for the duration of a single
// event. SeqIndex/SeqTotal are set only for album (multi-image) posts.
type Attachment struct {
	EventID     string
	MessageID   string
	ContentType string
	AlbumID     string
	SeqIndex    int
	SeqTotal    int
}

// Album reports whether the attachment is part of a multi-image post.
func (a Attachment) Album() bool {
	return a.SeqIndex > 0 && a.SeqTotal > 0
}

// Last reports whether this is the final item of its album. Standalone
// attachments are trivially last.
func (a Attachment) Last() bool {
	return !a.Album() || a.SeqIndex == a.SeqTotal
}

// BuildPath derives the storage location for an attachment, relative to the
// storage root: <date>/<folder>[/album_<id>]/<filename>. folder must
// already be sanitized. Album items get a deterministic zero-padded index
// filename so redelivery overwrites instead of duplicating; standalone
// items get a timestamp plus a content-hash suffix so rapid repeated sends
// never collide.
func BuildPath(folder, date string, att Attachment, data []byte, now time.Time) (dir, filename string) {
	dir = path.Join(date, folder)
	if att.AlbumID != "" {
		dir = path.Join(dir, "album_"+Sanitize(att.AlbumID))
	}
	ext := extensionForContentType(att.ContentType)
	if att.Album() {
		filename = fmt.Sprintf("%03d%s", att.SeqIndex, ext)
		return dir, filename
	}
	sum := sha1.Sum(data)
	filename = fmt.Sprintf("%s_%06d_%s%s",
		now.Format("150405"),
		now.Nanosecond()/1000,
		hex.EncodeToString(sum[:])[:8],
		ext)
	return dir, filename
}

func extensionForContentType(contentType string) string {
	// Strip parameters such as "; charset=...".
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	default:
		return ".jpg"
	}
}
