package database

import "time"

// Exchange statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Exchange is the metadata of one advice request. The farmer's text and
// the model reply are never stored.
type Exchange struct {
	ID            int64  `db:"id"              json:"id"`
	RequestID     string `db:"request_id"      json:"requestId"`
	Channel       string `db:"channel"         json:"channel"`
	FarmID        int    `db:"farm_id"         json:"farmId"`
	Mode          string `db:"mode"            json:"mode"`
	Provider      string `db:"provider"        json:"provider"`
	Model         string `db:"model"           json:"model"`
	TextLength    int    `db:"text_length"     json:"textLength"`
	HasImage      bool   `db:"has_image"       json:"hasImage"`
	HistoryTurns  int    `db:"history_turns"   json:"historyTurns"`
	Status        string `db:"status"          json:"status"`
	ErrorClass    string `db:"error_class"     json:"errorClass,omitempty"`
	LatencyMS     int64  `db:"latency_ms"      json:"latencyMs"`
	CreatedUnixMS int64  `db:"created_unix_ms" json:"createdUnixMs"`
}

// CreatedAt returns the creation time in UTC.
func (e Exchange) CreatedAt() time.Time {
	return time.UnixMilli(e.CreatedUnixMS).UTC()
}
