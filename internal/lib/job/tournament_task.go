package job

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskTournamentRecalculate = "tournament:recalculate"

type RecalculatePayload struct {
	TournamentID uuid.UUID `json:"tournament_id"`
}

// NewRecalculateTask schedules a score recalculation. Tasks are not
// deduplicated: one enqueued while another is running must still run,
// because the running one may have read the older brackets. Extra runs are
// harmless since each reads the current brackets.
func NewRecalculateTask(tournamentID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(RecalculatePayload{TournamentID: tournamentID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskTournamentRecalculate,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueCritical),
		asynq.Timeout(2*time.Minute),
	), nil
}
