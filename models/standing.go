package models

// Standing is one row of a tournament table: a roster player and the sum of
// their scores over every match of the tournament.
type Standing struct {
	Player Player `json:"player"`
	Total  int    `json:"total"`
}

// TournamentStandings pairs a tournament with its ordered standings.
type TournamentStandings struct {
	Tournament Tournament `json:"tournament"`
	Standings  []Standing `json:"standings"`
}

// Summary is the home view: active tournament(s) and everything before them.
type Summary struct {
	Active   []TournamentStandings `json:"active"`
	Previous []TournamentStandings `json:"previous"`
}
