// Package sync drives the incremental mirror pass: deciding which
// months of each list to fetch, detecting content changes, and
// triggering archive rebuilds.
package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nhle/listmirror/internal/archive"
	"github.com/nhle/listmirror/internal/delivery"
	"github.com/nhle/listmirror/internal/fetch"
	"github.com/nhle/listmirror/internal/model"
	"github.com/nhle/listmirror/internal/period"
	"github.com/nhle/listmirror/internal/store"
)

// CredentialFunc looks up the login credentials for a list. A nil
// credentials result means the list is fetched unauthenticated.
type CredentialFunc func(model.List) (*model.Credentials, error)

// Options adjust how the Engine runs.
type Options struct {
	// Force rebuilds every list's archive even when no payload changed.
	Force bool

	// Resolve looks up credentials for lists with private archives.
	// Nil disables authenticated retrieval.
	Resolve CredentialFunc

	// Placer delivers finished artifacts. Defaults to delivery.DirPlacer.
	Placer delivery.Placer

	// Now is the reference clock for temporal classification.
	// Defaults to UTC wall time.
	Now func() time.Time
}

// Engine processes lists one at a time, and months within a list one
// at a time in ascending order. Nothing runs concurrently, so the
// before-snapshot comparison never races a payload write.
type Engine struct {
	store   store.Store
	fetcher fetch.Fetcher
	cfg     model.Config
	root    string
	opts    Options
}

// New creates an Engine rooted at the archive storage directory root.
func New(
	s store.Store,
	f fetch.Fetcher,
	cfg model.Config,
	root string,
	opts Options,
) *Engine {
	if opts.Placer == nil {
		opts.Placer = delivery.DirPlacer{}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Engine{
		store:   s,
		fetcher: f,
		cfg:     cfg,
		root:    root,
		opts:    opts,
	}
}

// Run processes every configured list in order. It returns the per-list
// results alongside any hard error that aborted the pass; results for
// lists processed before the abort are still returned.
func (e *Engine) Run(ctx context.Context) ([]model.ListResult, error) {
	results := make([]model.ListResult, 0, len(e.cfg.Lists))
	for _, l := range e.cfg.Lists {
		result, err := e.SyncList(ctx, l)
		results = append(results, result)
		if err != nil {
			return results, fmt.Errorf("syncing list %s: %w", l.Name, err)
		}
	}
	return results, nil
}

// SyncList runs one full pass over a list: every configured month is
// fetched or skipped, change signals are aggregated, and the archive
// is rebuilt when anything changed (or force is set). Soft failures
// such as a bad credential land in the result's Err; a non-nil error
// return means the whole run must stop.
func (e *Engine) SyncList(ctx context.Context, l model.List) (model.ListResult, error) {
	result := model.ListResult{List: l.Name}

	creds, err := e.resolveCredentials(l)
	if err != nil {
		log.Warnf("skipping list %s: %s", l.Name, err)
		result.Err = err
		return result, nil
	}

	dir := archive.ListDir(e.root, l.Archive())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, fmt.Errorf("creating list directory %s: %w", dir, err)
	}

	if last, err := e.store.LastRun(ctx, l.Name); err != nil {
		log.Warnf("reading last run for %s: %s", l.Name, err)
	} else if last != nil {
		log.Debugf("list %s last synced %s", l.Name, last.FinishedAt.Format(time.RFC3339))
	}

	started := e.opts.Now()
	rebuild := e.opts.Force

	for _, p := range period.Enumerate(e.yearsFor(l)) {
		fetched, changed, err := e.processUnit(ctx, l, creds, p)
		if fetched {
			result.UnitsFetched++
		}
		if changed {
			result.UnitsChanged++
		}
		if err != nil {
			// A failed login dooms every remaining month of this
			// list; abandon the pass but let other lists proceed.
			if fetch.IsAuthError(err) {
				log.Warnf("abandoning list %s: %s", l.Name, err)
				result.Err = err
				break
			}
			return result, err
		}
		rebuild = rebuild || changed
	}

	if rebuild && result.Err == nil {
		result.Rebuilt = true
		result.ArtifactPath = e.rebuild(l, dir)
	}

	run := model.SyncRun{
		List:         l.Name,
		StartedAt:    started,
		FinishedAt:   e.opts.Now(),
		UnitsFetched: result.UnitsFetched,
		UnitsChanged: result.UnitsChanged,
		Rebuilt:      result.Rebuilt,
	}
	if err := e.store.RecordRun(ctx, run); err != nil {
		return result, err
	}

	return result, nil
}

// processUnit decides fetch-or-skip for one month and detects whether
// its payload content changed. It reports whether a fetch was
// attempted and whether the content materially changed.
func (e *Engine) processUnit(
	ctx context.Context,
	l model.List,
	creds *model.Credentials,
	p period.Period,
) (fetched, changed bool, err error) {
	closed, err := e.store.IsClosed(ctx, l.Name, p)
	if err != nil {
		return false, false, err
	}
	if closed {
		log.Debugf("list %s %s: closed, skipping", l.Name, p)
		return false, false, nil
	}

	dest := archive.PayloadPath(e.root, l.Archive(), p)

	// Snapshot the current payload so a replacing download can be
	// compared byte for byte afterwards. The cleanup is registered
	// before the copy so not even a half-written snapshot outlives
	// the unit.
	var (
		hadBefore bool
		prevMtime time.Time
	)
	defer os.Remove(dest + snapshotSuffix)
	if info, statErr := os.Stat(dest); statErr == nil {
		hadBefore = true
		prevMtime = info.ModTime()
		if err := copyFile(dest, dest+snapshotSuffix); err != nil {
			return false, false, fmt.Errorf("snapshotting %s: %w", dest, err)
		}
	}

	class := period.Classify(p, e.opts.Now())
	if class != period.Future {
		fetched = true
		_, fetchErr := e.fetcher.Fetch(ctx, fetch.Request{
			URL:         e.remoteURL(l, p),
			Dest:        dest,
			Credentials: creds,
		})
		switch {
		case fetchErr == nil:
		case fetch.IsAuthError(fetchErr):
			// Do not close the unit: with working credentials a later
			// run must still be able to retrieve it.
			return fetched, false, fetchErr
		case errors.Is(fetchErr, fetch.ErrNotFound):
			log.Debugf("list %s %s: no payload on server", l.Name, p)
		default:
			log.Warnf("list %s %s: fetch failed: %s", l.Name, p, fetchErr)
		}
	}

	if class == period.Past {
		if err := e.store.MarkClosed(ctx, l.Name, p); err != nil {
			return fetched, false, err
		}
	}

	changed, err = detectChange(dest, hadBefore, prevMtime)
	return fetched, changed, err
}

// rebuild regenerates and delivers one list's consolidated archive.
// Both steps are best-effort: a failure leaves the payloads intact and
// the next changed run (or a forced one) tries again.
func (e *Engine) rebuild(l model.List, dir string) string {
	artifact, err := archive.Rebuild(dir, l.ArtifactName())
	if err != nil {
		log.Warnf("rebuilding archive for %s: %s", l.Name, err)
		return ""
	}

	final, err := e.opts.Placer.Deliver(artifact, e.cfg.Destination)
	if err != nil {
		log.Warnf("delivering archive for %s: %s", l.Name, err)
		return artifact
	}
	return final
}

// resolveCredentials applies the configured credential lookup.
func (e *Engine) resolveCredentials(l model.List) (*model.Credentials, error) {
	if e.opts.Resolve == nil {
		return nil, nil
	}
	return e.opts.Resolve(l)
}

// yearsFor returns the years to mirror for a list, defaulting to the
// current year when no configuration supplies any.
func (e *Engine) yearsFor(l model.List) []int {
	if years := e.cfg.YearsFor(l); len(years) > 0 {
		return years
	}
	return []int{e.opts.Now().Year()}
}

// remoteURL builds the server location of one monthly payload.
func (e *Engine) remoteURL(l model.List, p period.Period) string {
	server := strings.TrimRight(e.cfg.ServerFor(l), "/")
	return server + "/" + l.Name + "/" + p.RemoteName()
}
