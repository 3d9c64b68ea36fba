// Package common defines sentinel errors shared by the repositories, stores,
// services and the HTTP layer of shareme. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Client input errors.
	ErrorMissingFile    = errors.New("file not found in request")
	ErrorMissingFields  = errors.New("required fields are missing")
	ErrorInvalidRequest = errors.New("invalid request")

	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Upstream errors (object storage, remote content, mail transport).
	ErrorStorage          = errors.New("storage error")
	ErrorIncompleteUpload = errors.New("storage returned incomplete metadata")
	ErrorUpstreamFetch    = errors.New("remote content unavailable")
	ErrorMailTransport    = errors.New("mail transport error")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")
)
