package contracts

import (
	"context"
)

// PayloadArchive stores verified inbound webhook bodies for audit and replay.
type PayloadArchive interface {
	ArchivePayload(ctx context.Context, externalRef string, contentType string, payload []byte) error
}
