package archive

import (
	"strings"
	"testing"
	"time"
)

func TestBuildPathAlbumMode(t *testing.T) {
	t.Parallel()

	att := Attachment{
		MessageID:   "m1",
		ContentType: "image/jpeg",
		AlbumID:     "set-1",
		SeqIndex:    7,
		SeqTotal:    10,
	}
	now := time.Date(2024, 5, 1, 10, 11, 12, 0, time.UTC)
	dir, filename := BuildPath("Math Club", "2024-05-01", att, []byte("img"), now)

	if dir != "2024-05-01/Math Club/album_set-1" {
		t.Fatalf("unexpected dir: %q", dir)
	}
	if filename != "007.jpg" {
		t.Fatalf("unexpected filename: %q", filename)
	}
}

func TestBuildPathAlbumOverwritesOnRedelivery(t *testing.T) {
	t.Parallel()

	att := Attachment{ContentType: "image/png", AlbumID: "a", SeqIndex: 2, SeqTotal: 3}
	_, first := BuildPath("user_U1", "2024-05-01", att, []byte("one"), time.Now())
	_, second := BuildPath("user_U1", "2024-05-01", att, []byte("two"), time.Now().Add(time.Hour))
	if first != second {
		t.Fatalf("album filenames should be deterministic: %q != %q", first, second)
	}
}

func TestBuildPathStandaloneUnique(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 10, 11, 12, 0, time.UTC)
	att := Attachment{ContentType: "image/jpeg"}
	_, a := BuildPath("user_U1", "2024-05-01", att, []byte("first image"), now)
	_, b := BuildPath("user_U1", "2024-05-01", att, []byte("second image"), now)
	if a == b {
		t.Fatalf("standalone filenames collided within the same second: %q", a)
	}
}

func TestBuildPathStandaloneShape(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 10, 11, 12, 345678000, time.UTC)
	att := Attachment{ContentType: "image/png"}
	dir, filename := BuildPath("user_U1", "2024-05-01", att, []byte("img"), now)

	if dir != "2024-05-01/user_U1" {
		t.Fatalf("unexpected dir: %q", dir)
	}
	if !strings.HasPrefix(filename, "101112_345678_") {
		t.Fatalf("unexpected timestamp prefix: %q", filename)
	}
	if !strings.HasSuffix(filename, ".png") {
		t.Fatalf("unexpected extension: %q", filename)
	}
}

func TestBuildPathSanitizesAlbumID(t *testing.T) {
	t.Parallel()

	att := Attachment{ContentType: "image/jpeg", AlbumID: "a/b..", SeqIndex: 1, SeqTotal: 2}
	dir, _ := BuildPath("user_U1", "2024-05-01", att, nil, time.Now())
	if dir != "2024-05-01/user_U1/album_a_b" {
		t.Fatalf("unexpected dir: %q", dir)
	}
}

func TestExtensionForContentType(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"image/jpeg":               ".jpg",
		"image/png":                ".png",
		"image/gif":                ".gif",
		"image/png; charset=utf-8": ".png",
		"application/octet-stream": ".jpg",
		"":                         ".jpg",
	}
	for contentType, want := range cases {
		if got := extensionForContentType(contentType); got != want {
			t.Fatalf("extensionForContentType(%q) = %q, want %q", contentType, got, want)
		}
	}
}

func TestAttachmentAlbumAndLast(t *testing.T) {
	t.Parallel()

	standalone := Attachment{}
	if standalone.Album() || !standalone.Last() {
		t.Fatalf("standalone attachment misclassified")
	}
	mid := Attachment{SeqIndex: 1, SeqTotal: 3}
	if !mid.Album() || mid.Last() {
		t.Fatalf("mid-album attachment misclassified")
	}
	last := Attachment{SeqIndex: 3, SeqTotal: 3}
	if !last.Album() || !last.Last() {
		t.Fatalf("final album attachment misclassified")
	}
}
