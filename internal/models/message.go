package models

// Message represents a message posted by an account.
type Message struct {
	ID            int64  `json:"id"`
	AuthorID      int64  `json:"authorId"`
	Text          string `json:"text"`
	PostedAtEpoch int64  `json:"postedAtEpoch"` // Caller-supplied, seconds or ms since epoch
}
