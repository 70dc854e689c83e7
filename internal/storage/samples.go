package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/mpcsim/internal/metrics"
	"github.com/san-kum/mpcsim/internal/mpc"
)

var sampleHeader = []string{"step", "agent", "x", "y", "heading", "cost", "goal_dist", "action"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatAction(u mpc.Action) string {
	parts := make([]string, len(u))
	for i, v := range u {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, " ")
}

func parseAction(s string) (mpc.Action, error) {
	fields := strings.Fields(s)
	u := make(mpc.Action, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		u[i] = v
	}
	return u, nil
}

func sampleRecord(s metrics.Sample) []string {
	return []string{
		strconv.Itoa(s.Step),
		strconv.Itoa(s.Agent),
		formatFloat(s.Pose[0]),
		formatFloat(s.Pose[1]),
		formatFloat(s.Pose[2]),
		formatFloat(s.Cost),
		formatFloat(s.GoalDist),
		formatAction(s.Action),
	}
}

func parseSampleRecord(record []string) (metrics.Sample, error) {
	var s metrics.Sample
	if len(record) != len(sampleHeader) {
		return s, fmt.Errorf("expected %d fields, got %d", len(sampleHeader), len(record))
	}

	var err error
	if s.Step, err = strconv.Atoi(record[0]); err != nil {
		return s, err
	}
	if s.Agent, err = strconv.Atoi(record[1]); err != nil {
		return s, err
	}

	floats := make([]float64, 5)
	for i := range floats {
		if floats[i], err = strconv.ParseFloat(record[i+2], 64); err != nil {
			return s, err
		}
	}
	s.Pose = mpc.Pose{floats[0], floats[1], floats[2]}
	s.Cost = floats[3]
	s.GoalDist = floats[4]

	if s.Action, err = parseAction(record[7]); err != nil {
		return s, err
	}
	return s, nil
}
