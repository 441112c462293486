package responses

import "time"

type PostProcessPass struct {
	Started    bool                  `json:"started"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Pending    int                   `json:"pending"`
	Counts     map[string]int        `json:"counts"`
	Documents  []PostProcessDocument `json:"documents,omitempty"`
}

type PostProcessDocument struct {
	FormName string `json:"form_name"`
	Outcome  string `json:"outcome"`
	Error    string `json:"error,omitempty"`
}
