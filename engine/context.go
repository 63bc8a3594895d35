package engine

import "fmt"

// ExecutionContext says which side of a client/server split the runtime
// plays. Player-input behaviors only make sense on the client.
type ExecutionContext int

const (
	ContextClient ExecutionContext = iota
	ContextServer
)

func (c ExecutionContext) String() string {
	switch c {
	case ContextClient:
		return "client"
	case ContextServer:
		return "server"
	default:
		return fmt.Sprintf("ExecutionContext(%d)", int(c))
	}
}

func ParseExecutionContext(s string) (ExecutionContext, error) {
	switch s {
	case "", "client":
		return ContextClient, nil
	case "server":
		return ContextServer, nil
	default:
		return 0, fmt.Errorf("config: unknown context %q", s)
	}
}
