package models

import "time"

// FlyerVersion is an immutable point-in-time snapshot of the full
// flyer+pages+slots graph, taken at submission. Never mutated after creation.
type FlyerVersion struct {
	ID            string    `db:"id" json:"id"`
	FlyerID       string    `db:"flyer_id" json:"flyerId"`
	VersionNumber int       `db:"version_number" json:"versionNumber"`
	Payload       []byte    `db:"payload" json:"payload"`
	AuthorID      string    `db:"author_id" json:"authorId"`
	Description   string    `db:"description" json:"description"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
