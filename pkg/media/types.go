package media

import (
	"context"
	"io"
)

// FileInfo describes one uploaded media file as known to the storage
// provider.
type FileInfo struct {
	FileName         string // original file name as supplied by the user
	ProviderFileName string // unique name assigned on upload
	ProviderName     string
	ContentType      string
	ContentHash      string
	URI              string
	PublicURI        string // time-limited serving URL
}

// Uploader is the contract for durable media storage. Upload must complete
// the byte transfer before returning; PublicURL issues a time-limited URL for
// a previously uploaded file.
type Uploader interface {
	Upload(ctx context.Context, content io.Reader, fileName string) (*FileInfo, error)
	PublicURL(ctx context.Context, providerFileName string) (string, error)
}
