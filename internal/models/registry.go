package models

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/san-kum/mpcsim/internal/mpc"
)

const (
	KindDiffDrive      = "diff_drive"
	KindAccelDiffDrive = "accel_diff_drive"
)

var (
	// ErrUnknownKind indicates a model name with no registered constructor.
	ErrUnknownKind = errors.New("models: unknown model kind")

	// ErrDimensionMismatch indicates a state that does not fit the model.
	ErrDimensionMismatch = errors.New("models: dimension mismatch between state and model")
)

type Factory func(x mpc.State, goal mpc.Pose, rng *rand.Rand) mpc.Agent

type entry struct {
	stateDim int
	build    Factory
}

type Registry struct {
	models map[string]entry
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]entry)}

	r.Register(KindDiffDrive, 3, func(x mpc.State, goal mpc.Pose, rng *rand.Rand) mpc.Agent {
		return NewDiffDrive(x, goal, rng)
	})
	r.Register(KindAccelDiffDrive, 5, func(x mpc.State, goal mpc.Pose, rng *rand.Rand) mpc.Agent {
		return NewAccelDiffDrive(x, goal, rng)
	})

	return r
}

func (r *Registry) Register(kind string, stateDim int, fn Factory) {
	r.models[kind] = entry{stateDim: stateDim, build: fn}
}

// GetModel builds an agent of the given kind after checking the state length.
func (r *Registry) GetModel(kind string, x mpc.State, goal mpc.Pose, rng *rand.Rand) (mpc.Agent, error) {
	e, ok := r.models[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if len(x) != e.stateDim {
		return nil, fmt.Errorf("%w: %s wants %d state components, got %d", ErrDimensionMismatch, kind, e.stateDim, len(x))
	}
	return e.build(x, goal, rng), nil
}

// InferKind picks the only kind whose state has n components.
func (r *Registry) InferKind(n int) (string, error) {
	found := ""
	for kind, e := range r.models {
		if e.stateDim != n {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("%w: state of length %d is ambiguous", ErrUnknownKind, n)
		}
		found = kind
	}
	if found == "" {
		return "", fmt.Errorf("%w: no model with %d state components", ErrUnknownKind, n)
	}
	return found, nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KindOf names the model behind a built-in agent.
func KindOf(a mpc.Agent) (string, error) {
	switch a.(type) {
	case *DiffDrive:
		return KindDiffDrive, nil
	case *AccelDiffDrive:
		return KindAccelDiffDrive, nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownKind, a)
	}
}

func checkDim(kind string, x mpc.State, n int) {
	if len(x) != n {
		panic(fmt.Errorf("%w: %s wants %d state components, got %d", ErrDimensionMismatch, kind, n, len(x)))
	}
}

func defaultRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
