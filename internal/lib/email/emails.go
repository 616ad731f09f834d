package email

import (
	"context"
	"fmt"
	"time"
)

type WelcomeData struct {
	Username string
	JoinedAt time.Time
}

type TournamentResultsData struct {
	TournamentName string
	Username       string
	Position       int
	Score          int
	CorrectPicks   int
	CoLeaders      []string
	WinnerReward   string
	LoserForfeit   string
}

func (c *Client) SendWelcomeEmail(ctx context.Context, to string, data WelcomeData) error {
	return c.SendEmail(ctx, to, "Welcome to Pickboard!", TemplateWelcome, data)
}

func (c *Client) SendTournamentResultsEmail(ctx context.Context, to string, data TournamentResultsData) error {
	subject := fmt.Sprintf("%s: final standings", data.TournamentName)
	return c.SendEmail(ctx, to, subject, TemplateTournamentResults, data)
}
