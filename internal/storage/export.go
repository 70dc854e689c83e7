package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/mpcsim/internal/metrics"
)

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Samples []exportSample `json:"samples"`
}

type exportSample struct {
	Step     int       `json:"step"`
	Agent    int       `json:"agent"`
	Pose     []float64 `json:"pose"`
	Action   []float64 `json:"action"`
	Cost     float64   `json:"cost"`
	GoalDist float64   `json:"goal_dist"`
}

func ExportJSON(w io.Writer, meta RunMetadata, samples []metrics.Sample) error {
	data := ExportData{
		Run:     meta,
		Samples: make([]exportSample, len(samples)),
	}

	for i, s := range samples {
		pose := s.Pose
		data.Samples[i] = exportSample{
			Step:     s.Step,
			Agent:    s.Agent,
			Pose:     pose[:],
			Action:   s.Action,
			Cost:     s.Cost,
			GoalDist: s.GoalDist,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
