// Package fetch retrieves monthly archive payloads from remote list
// servers. It performs conditional transfers so unchanged months cost
// a header exchange instead of a download.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/listmirror/internal/model"
)

// ErrNotFound indicates the remote server has no payload for the
// requested month. Expected for months before a list existed.
var ErrNotFound = errors.New("payload not found on server")

// AuthError indicates that authentication has failed or expired for a
// private archive. It is returned when the server answers 401 or 403.
type AuthError struct {
	URL     string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.URL, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Request describes one payload transfer: where to get it, where to
// put it, and how to authenticate.
type Request struct {
	// URL is the absolute remote location of the monthly payload.
	URL string

	// Dest is the local path the payload is written to. When the file
	// already exists, its modification time drives the conditional
	// request.
	Dest string

	// Credentials authenticate access to a private archive. Nil for
	// public lists.
	Credentials *model.Credentials
}

// Fetcher defines the contract for retrieving a single monthly payload.
type Fetcher interface {
	// Fetch transfers the payload described by req. It reports true
	// when a new payload was written to req.Dest and false when the
	// server confirmed the local copy is current.
	Fetch(ctx context.Context, req Request) (bool, error)
}
