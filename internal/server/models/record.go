package models

import (
	"encoding/json"
	"time"
)

// Record is one stored entity document of some kind. Doc never carries the
// id; it is attached from the row when the record leaves the server.
type Record struct {
	ID        string
	OwnerID   string
	Doc       json.RawMessage
	CreatedAt time.Time
}
