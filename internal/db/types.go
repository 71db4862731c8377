package db

// FinishedGame is what a table records when its game ends.
type FinishedGame struct {
	TableID     string `db:"table_id"`
	Mode        string `db:"mode"`
	HumanColor  string `db:"human_color"`
	RoomID      string `db:"room_id"`
	Result      string `db:"result"`
	Termination string `db:"termination"`
	MovesSAN    string `db:"moves_san"`
	AIMoves     int    `db:"ai_moves"`
	AIFallbacks int    `db:"ai_fallbacks"`
	PGN         string `db:"pgn"`
}

type GameDetail struct {
	ID          int64  `db:"id"`
	TableID     string `db:"table_id"`
	PlayedAt    string `db:"played_at"`
	Mode        string `db:"mode"`
	HumanColor  string `db:"human_color"`
	RoomID      string `db:"room_id"`
	Result      string `db:"result"`
	Termination string `db:"termination"`
	MovesSAN    string `db:"moves_san"`
	Plies       int    `db:"ply_count"`
	AIMoves     int    `db:"ai_moves"`
	AIFallbacks int    `db:"ai_fallbacks"`
}

type GameSearchFilter struct {
	Mode        string
	Result      string
	Termination string
	RoomID      string
}

type ResultSummary struct {
	Mode   string `db:"mode"`
	Result string `db:"result"`
	Count  int    `db:"count"`
}
