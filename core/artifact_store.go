package core

// ArtifactStore persists binary artifacts (e.g. code snapshots produced by
// the fix pipeline) scoped to a session.
type ArtifactStore interface {
	Save(sessionID, id string, data []byte) error
	Get(sessionID, id string) ([]byte, error)
	List(sessionID string) ([]string, error)
}
