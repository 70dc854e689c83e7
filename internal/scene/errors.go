package scene

import "errors"

var (
	// ErrEmptyScene indicates a run was requested on a scene with no agents.
	ErrEmptyScene = errors.New("scene: no agents")

	// ErrStepLimit indicates no agent reached its goal within the step cap.
	ErrStepLimit = errors.New("scene: step limit reached before any agent arrived")

	// ErrMalformedScene indicates a persisted scene that parsed but cannot be built.
	ErrMalformedScene = errors.New("scene: malformed scene document")
)
