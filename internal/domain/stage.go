package domain

import (
	"fmt"
	"time"
)

type Stage string

func (s Stage) String() string {
	return string(s)
}

const (
	StageScrape  Stage = "scrape"
	StageEnrich  Stage = "enrich"
	StagePersist Stage = "persist"
)

// Stages is the fixed order the pipeline runs in.
var Stages = []Stage{StageScrape, StageEnrich, StagePersist}

// Downstream returns the stages that consume the output of s.
func (s Stage) Downstream() []Stage {
	for i, stage := range Stages {
		if stage == s {
			return Stages[i+1:]
		}
	}
	return nil
}

// Checkpoint records the durable output of a finished stage for one run date.
type Checkpoint struct {
	Stage      Stage     `json:"stage"`
	RunID      string    `json:"run_id"`
	RunDate    string    `json:"run_date"`
	Artifact   string    `json:"artifact"`
	Records    int       `json:"records"`
	FinishedAt time.Time `json:"finished_at"`
}

// RunDateLayout is the date stamp used in artifact names and checkpoints.
const RunDateLayout = "20060102"

// RunDate formats t as a run date in loc.
func RunDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(RunDateLayout)
}

// ParseRunDate validates a YYYYMMDD run date.
func ParseRunDate(s string) (string, error) {
	if _, err := time.Parse(RunDateLayout, s); err != nil {
		return "", fmt.Errorf("invalid run date %q, expected YYYYMMDD: %w", s, err)
	}
	return s, nil
}
