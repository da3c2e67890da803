package port

import "context"

// DocumentReader converts an uploaded binary document to plain UTF-8 text.
// Extraction failure is swallowed at this boundary: implementations return an
// empty string instead of an error so the pipeline proceeds with defaults.
type DocumentReader interface {
	ExtractText(ctx context.Context, data []byte, contentType string) string
}
