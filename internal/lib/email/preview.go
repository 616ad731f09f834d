package email

import "time"

// PreviewData holds sample data for every template, for local previews and
// render checks.
var PreviewData = map[Template]any{
	TemplateWelcome: WelcomeData{
		Username: "bracketbuster",
		JoinedAt: time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
	},
	TemplateTournamentResults: TournamentResultsData{
		TournamentName: "Spring Invitational",
		Username:       "bracketbuster",
		Position:       1,
		Score:          27,
		CorrectPicks:   11,
		CoLeaders:      []string{"upsetqueen"},
		WinnerReward:   "Bragging rights and a free lunch",
		LoserForfeit:   "Buys the coffee",
	},
}
