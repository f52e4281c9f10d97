package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// HTTPFetcher retrieves payloads over HTTP. It sends If-Modified-Since
// headers derived from the local file's modification time, writes
// downloads atomically, and keeps a cookie session per private archive
// so the login form is posted at most once per archive.
type HTTPFetcher struct {
	httpClient *http.Client
	loggedIn   map[string]bool
}

// NewHTTPFetcher creates an HTTP fetcher with a fresh cookie jar.
func NewHTTPFetcher() (*HTTPFetcher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
			Jar:     jar,
		},
		loggedIn: make(map[string]bool),
	}, nil
}

// Fetch transfers one monthly payload. The transfer is conditional:
// when the local copy exists, its modification time is sent as
// If-Modified-Since and a 304 answer leaves the file untouched.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (bool, error) {
	if req.Credentials != nil {
		if err := f.login(ctx, req); err != nil {
			return false, err
		}
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodGet, req.URL, nil,
	)
	if err != nil {
		return false, fmt.Errorf("creating request for %s: %w", req.URL, err)
	}

	if info, err := os.Stat(req.Dest); err == nil {
		httpReq.Header.Set(
			"If-Modified-Since",
			info.ModTime().UTC().Format(http.TimeFormat),
		)
	}

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("fetching %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return false, nil
	case http.StatusNotFound:
		return false, fmt.Errorf("%s: %w", req.URL, ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, &AuthError{
			URL:     req.URL,
			Message: fmt.Sprintf("server answered %d", resp.StatusCode),
		}
	case http.StatusOK:
		// Fall through to the download below.
	default:
		return false, fmt.Errorf(
			"unexpected status %d fetching %s", resp.StatusCode, req.URL,
		)
	}

	if err := writeAtomic(req.Dest, resp.Body); err != nil {
		return false, fmt.Errorf("writing payload %s: %w", req.Dest, err)
	}

	// Mirror the server's modification time onto the local file so the
	// next conditional request compares against the same instant.
	if t, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		if err := os.Chtimes(req.Dest, t, t); err != nil {
			return false, fmt.Errorf(
				"setting modification time on %s: %w", req.Dest, err,
			)
		}
	}

	return true, nil
}

// login posts the archive's authentication form once and relies on the
// cookie jar afterwards. The form target is the payload URL's parent
// directory, which is the archive's index page.
func (f *HTTPFetcher) login(ctx context.Context, req Request) error {
	archiveURL := req.URL
	if i := strings.LastIndex(archiveURL, "/"); i >= 0 {
		archiveURL = archiveURL[:i+1]
	}

	if f.loggedIn[archiveURL] {
		return nil
	}

	form := url.Values{
		"username": {req.Credentials.Username},
		"password": {req.Credentials.Password},
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, archiveURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("creating login request for %s: %w", archiveURL, err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("logging in to %s: %w", archiveURL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusForbidden {
		return &AuthError{
			URL:     archiveURL,
			Message: fmt.Sprintf("login rejected with %d", resp.StatusCode),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return fmt.Errorf(
			"unexpected status %d logging in to %s", resp.StatusCode, archiveURL,
		)
	}

	f.loggedIn[archiveURL] = true
	return nil
}

// writeAtomic streams body into dest via a temporary sibling file and
// a rename, so a failed transfer never clobbers an existing payload.
func writeAtomic(dest string, body io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".fetch-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("streaming payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
