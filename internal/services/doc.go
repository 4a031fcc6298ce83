// Package services defines the [Service] interface for the remote playlist API and implements it for YouTube.
//
// # Service Interface
//
// A sync run needs two operations from the platform: paging through a playlist's contents and
// appending a video to it. [Service] captures exactly those so the sync engine can be driven by
// a fake in tests.
//
// # YouTube Implementation
//
// [YouTubeService] wraps the generated YouTube Data API v3 client. Listing requests only the
// contentDetails part (1 quota unit per page); inserts send a snippet naming the playlist and a
// youtube#video resource (50 quota units each).
//
// # Authentication
//
// [GoogleAuth] implements [ClientFactory]. It loads the cached token, refreshes it when expired
// and a refresh token is present, and otherwise runs an [Authorizer] (the loopback flow in package
// server). New and refreshed tokens are written back to the cache, so the browser flow only runs
// when the grant is missing or revoked.
//
// # Error Handling
//
// Errors carrying an HTTP status from the platform are returned as [*APIError], whose message has
// the form "HTTP <status> <message>". Transport errors (timeouts, resets) are returned unchanged.
// Credential problems use the sentinel errors from package shared:
//   - [shared.ErrMissingCredentials] : client secret file missing
//   - [shared.ErrInvalidCredentials] : client secret file malformed
//   - [shared.ErrNotAuthenticated] : no usable token and no interactive flow
//   - [shared.ErrAuthFailed] : interactive flow failed
package services
