// Package operation defines the calling convention every pipeline stage uses:
// a Factory validates its required arguments, asks a variant source which
// implementation to use, resolves that implementation in the registry and
// constructs it. The resulting Operation is single use.
package operation

import (
	"context"
	"fmt"

	"github.com/specialistvlad/lidarcore/internal/artifact"
)

// Inputs maps input names to artifacts.
type Inputs map[string]*artifact.Artifact

// Clone deep-copies every artifact in in.
func (in Inputs) Clone() Inputs {
	if in == nil {
		return nil
	}
	out := make(Inputs, len(in))
	for k, v := range in {
		out[k] = v.Clone()
	}
	return out
}

// Operation is one concrete algorithm instance.
type Operation interface {
	// Init performs deferred setup.
	Init(ctx context.Context) error
	// Run computes the result. A nil substitute uses the inputs the operation
	// was constructed with; a non-nil one replaces them for this call.
	Run(ctx context.Context, substitute Inputs) (*artifact.Artifact, error)
}

// Constructor builds an operation from validated arguments.
type Constructor func(args Args) (Operation, error)

// State is a position in the operation lifecycle.
type State int

const (
	Constructed State = iota
	Initialized
	Ran
)

func (s State) String() string {
	switch s {
	case Constructed:
		return "constructed"
	case Initialized:
		return "initialized"
	case Ran:
		return "ran"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StateError reports an out-of-order lifecycle call.
type StateError struct {
	Op   string
	Have State
	Want State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s an operation in state %s (want %s)", e.Op, e.Have, e.Want)
}

// Lifecycle tracks Constructed -> Initialized -> Ran. Implementations embed
// it and call MarkInitialized from Init and BeginRun from Run.
type Lifecycle struct {
	state State
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State { return l.state }

// MarkInitialized moves Constructed to Initialized.
func (l *Lifecycle) MarkInitialized() error {
	if l.state != Constructed {
		return &StateError{Op: "init", Have: l.state, Want: Constructed}
	}
	l.state = Initialized
	return nil
}

// BeginRun moves Initialized to Ran. A second run is rejected.
func (l *Lifecycle) BeginRun() error {
	if l.state != Initialized {
		return &StateError{Op: "run", Have: l.state, Want: Initialized}
	}
	l.state = Ran
	return nil
}
