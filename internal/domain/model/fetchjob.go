package model

import (
	"github.com/stretchops/insight/internal/domain/filters"
	"github.com/stretchops/insight/internal/domain/stage"
)

// FetchJob is one unit of work flowing through the fetch queue: resolve one
// stage's query for the filter state it was scheduled under. Key is the
// StageQueryKey computed at schedule time; the committer compares it against
// the current key before writing anything, so late responses for abandoned
// keys are discarded.
type FetchJob struct {
	Stage stage.Stage
	Key   string
	State filters.State

	// Metric is the resolved backend token for ranking-family stages,
	// looked up from the filter catalogue before scheduling.
	Metric string
}
