// Package datastore implements the generic persisted collection backing
// every profile service: an append-only journal file per (user, kind)
// with a full in-memory mirror for reads.
package datastore

import "time"

// Meta carries the store-assigned fields shared by every record kind.
// Embed it in a record struct to make the struct storable.
type Meta struct {
	ID        string    `json:"_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) meta() *Meta { return m }

// Record is satisfied by any struct that embeds Meta.
type Record interface{ meta() *Meta }
