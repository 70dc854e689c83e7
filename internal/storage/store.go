package storage

import (
	"context"
	"errors"
	"time"

	"github.com/san-kum/mpcsim/internal/metrics"
)

// ErrRunNotFound indicates an id with no stored run.
var ErrRunNotFound = errors.New("storage: run not found")

type RunMetadata struct {
	ID           string             `json:"id"`
	Scene        string             `json:"scene"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Dt           float64            `json:"dt"`
	Eps          float64            `json:"eps"`
	ControlIters int                `json:"control_iters"`
	RolloutIters int                `json:"rollout_iters"`
	Agents       int                `json:"agents"`
	Steps        int                `json:"steps"`
	Arrived      bool               `json:"arrived"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Store keeps the history of finished runs.
type Store interface {
	Init(ctx context.Context) error
	// Save assigns an id when meta.ID is empty and returns it.
	Save(ctx context.Context, meta RunMetadata, samples []metrics.Sample) (string, error)
	List(ctx context.Context) ([]RunMetadata, error)
	Load(ctx context.Context, id string) (*RunMetadata, error)
	LoadTrajectory(ctx context.Context, id string) ([]metrics.Sample, error)
}
