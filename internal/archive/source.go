package archive

import "fmt"

// SourceKind identifies where a message came from.
type SourceKind string

const (
	SourceUser  SourceKind = "user"
	SourceGroup SourceKind = "group"
	SourceRoom  SourceKind = "room"
)

// Source is the conversation a message originated in. Immutable, derived
// per event from the inbound payload; it only selects the folder-naming
// strategy and the push fallback target.
type Source struct {
	Kind SourceKind
	ID   string
}

func UserSource(userID string) Source {
	return Source{Kind: SourceUser, ID: userID}
}

func GroupSource(groupID string) Source {
	return Source{Kind: SourceGroup, ID: groupID}
}

func RoomSource(roomID string) Source {
	return Source{Kind: SourceRoom, ID: roomID}
}

// FallbackFolder is the identifier-based folder name used when no display
// name is available: user_<id>, group_<id>, or room_<id>.
func (s Source) FallbackFolder() string {
	return Sanitize(fmt.Sprintf("%s_%s", s.Kind, s.ID))
}
