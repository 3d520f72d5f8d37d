package ir

// Context resolves symbolic names to runtime tokens during a resolution pass.
// Implementations must be safe for concurrent reads if independent sequences
// are resolved in parallel. Lookup failures are returned unchanged by every
// Resolve method in this package.
type Context interface {
	// Variable returns the objective token for a named variable.
	Variable(name string, args []string) (string, error)

	// Memory returns the integer address of a memory location.
	Memory(loc int) (int, error)

	// CmdArg resolves a $param:value$ placeholder of a command template.
	CmdArg(param, value string) (string, error)

	// EntityTag returns the tag of the actor set addressed implicitly.
	// An empty tag still yields a tag= pair, matching untagged actors.
	EntityTag() string
}
