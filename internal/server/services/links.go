// Package services contains the server-side business logic: the upload
// pipeline, retrieval of stored files and the share-by-email workflow.
package services

import (
	"fmt"
	"strings"
)

// DownloadPageLink returns the client-side download page for id.
func DownloadPageLink(clientBase, id string) string {
	return strings.TrimRight(clientBase, "/") + "/download/" + id
}

// SizeLabel formats a byte count in megabytes with two decimals.
func SizeLabel(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
}
