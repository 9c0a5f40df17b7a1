package tui

import "github.com/baaaaaaaka/jdeps/internal/deps"

// Command is a message for the viewport. The set of implementations is
// closed; Viewport.handle rejects anything it does not know.
type Command interface {
	command()
}

// Query is a debounced search request. Seq grows with every input change.
type Query struct {
	Seq  uint64
	Text string
}

type (
	Exit   struct{}
	Up     struct{}
	Down   struct{}
	Accept struct{}
	Resize struct{}

	// InputChanged carries the sequence number of the query scheduled for
	// Value, so lookup updates for older input can be dropped.
	InputChanged struct {
		Seq   uint64
		Value string
	}

	LookupStarted struct {
		Seq   uint64
		Query string
	}

	ResultsUpdated struct {
		Seq   uint64
		Query string
		Items []deps.Dependency
	}

	LookupFailed struct {
		Seq   uint64
		Query string
		Err   error
	}
)

func (Exit) command()           {}
func (Up) command()             {}
func (Down) command()           {}
func (Accept) command()         {}
func (Resize) command()         {}
func (InputChanged) command()   {}
func (LookupStarted) command()  {}
func (ResultsUpdated) command() {}
func (LookupFailed) command()   {}
