package interfaces

import "context"

// Uploader is the decentralized storage collaborator. Implementations must
// hold a valid credential from construction onwards.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (cid string, err error)
	GatewayURL(cid string) string
}
