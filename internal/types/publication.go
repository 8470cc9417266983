package types

import "time"

// PublicationRecord is created once when a story is published; its existence
// is equivalent to the story having status published.
type PublicationRecord struct {
	PublishedAt    time.Time `json:"published_at"`
	DestinationIDs []string  `json:"destination_ids"`
}
