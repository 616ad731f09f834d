package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskWelcomeEmail           = "email:welcome"
	TaskTournamentResultsEmail = "email:tournament_results"
)

// WelcomeEmailPayload identifies a newly created profile. The address is
// looked up when the task runs.
type WelcomeEmailPayload struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

func NewWelcomeEmailTask(p WelcomeEmailPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWelcomeEmail,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueLow),
		asynq.Timeout(30*time.Second),
	), nil
}

// TournamentResultsPayload announces a final standing to one leader.
type TournamentResultsPayload struct {
	TournamentID   string   `json:"tournament_id"`
	TournamentName string   `json:"tournament_name"`
	UserID         string   `json:"user_id"`
	Username       string   `json:"username"`
	Position       int      `json:"position"`
	Score          int      `json:"score"`
	CorrectPicks   int      `json:"correct_picks"`
	CoLeaders      []string `json:"co_leaders,omitempty"`
	WinnerReward   string   `json:"winner_reward,omitempty"`
	LoserForfeit   string   `json:"loser_forfeit,omitempty"`
}

// NewTournamentResultsEmailTask builds the results email for one leader.
// The task id makes re-announcing an unchanged score a no-op.
func NewTournamentResultsEmailTask(p TournamentResultsPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskTournamentResultsEmail,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
		asynq.TaskID(fmt.Sprintf("results:%s:%s:%d", p.TournamentID, p.UserID, p.Score)),
		asynq.Retention(24*time.Hour),
	), nil
}
