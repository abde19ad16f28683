package domain

// Permission names an action an account may be allowed to perform.
type Permission string

// Permissions checked by the genre commands.
const (
	PermissionEditGenre          Permission = "EDIT_GENRE"
	PermissionVoteGenreRelevance Permission = "VOTE_GENRE_RELEVANCE"
)

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	switch p {
	case PermissionEditGenre, PermissionVoteGenreRelevance:
		return true
	default:
		return false
	}
}
