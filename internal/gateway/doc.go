// Package gateway provides an HTTP implementation of the domain.Uploader
// interface for a content-addressed storage gateway.
//
// The gateway accepts raw bytes on POST /api/v0/upload (bearer token auth)
// and answers with the content identifier; content is then served at
// <public base>/<cid>.
//
// The credential is checked when the client is built, not when the first
// upload happens. Uploads are paced by a token bucket so a burst of publish
// calls does not trip the gateway's own limits. Non-2xx statuses are returned
// as errors with the method, path and status text.
package gateway
