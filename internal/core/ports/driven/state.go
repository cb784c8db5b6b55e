package driven

// StateStore persists the small amount of runtime state that must survive
// a restart. Today that is the chat loop cursor: the id of the newest user
// message already answered.
type StateStore interface {
	// LastProcessed returns the cursor, or 0 when nothing was answered yet.
	LastProcessed() int64

	// SetLastProcessed moves the cursor and persists it before returning.
	SetLastProcessed(id int64) error

	// Path describes where the state lives.
	Path() string
}
