// Package models defines server-side data models persisted in the database.
package models

import "time"

// File is the metadata record of one shared upload. The bytes themselves
// live in object storage at SecureURL.
type File struct {
	// ID is assigned by the repository on creation and never changes.
	ID string
	// Filename is the name supplied by the uploader.
	Filename string
	// SizeInBytes is the size reported by object storage at upload time.
	SizeInBytes int64
	// Format is the file type label reported by object storage (e.g. "pdf").
	Format string
	// SecureURL is the durable remote URL of the stored bytes.
	SecureURL string

	// Sender and Receiver are set together after a share email was accepted
	// by the mail transport. Both are nil until then.
	Sender   *string
	Receiver *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of f.
func (f *File) Clone() *File {
	if f == nil {
		return nil
	}
	c := *f
	if f.Sender != nil {
		s := *f.Sender
		c.Sender = &s
	}
	if f.Receiver != nil {
		r := *f.Receiver
		c.Receiver = &r
	}
	return &c
}
