// Package dispatch queues torrent files for download through an external
// JDownloader instance. Dispatching never touches watch status or session
// state; it only stages links.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AsimMerchant/mpv-torbox-setup/internal/logging"
	"github.com/AsimMerchant/mpv-torbox-setup/internal/torbox"
)

// Outcome classifies what happened to a single dispatched file.
type Outcome int

const (
	OutcomeQueued Outcome = iota
	OutcomeDuplicate
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeQueued:
		return "queued"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is the outcome for one file. A Dispatch call returns results in the
// order the files were given.
type Result struct {
	File    torbox.File
	Outcome Outcome
	Err     error
}

// Tally counts results by outcome.
func Tally(results []Result) (queued, duplicates, failed int) {
	for _, r := range results {
		switch r.Outcome {
		case OutcomeQueued:
			queued++
		case OutcomeDuplicate:
			duplicates++
		default:
			failed++
		}
	}
	return
}

// Resolver yields download URLs for torrent files.
type Resolver interface {
	RequestDownloadLink(ctx context.Context, torrentID, fileID int64) (string, error)
}

// Grabber stages resolved links for download.
type Grabber interface {
	Ping(ctx context.Context) error
	AddLinks(ctx context.Context, pkg string, urls []string) error
}

// Dispatcher resolves links and pushes them to the grabber as one package
// per call. It remembers what it already queued during this run and reports
// repeats as duplicates instead of re-sending them; nothing is remembered
// across runs.
type Dispatcher struct {
	resolver Resolver
	grabber  Grabber
	workers  int

	mu   sync.Mutex
	sent map[int64]map[int64]bool // torrent id -> file ids queued this run
}

// New creates a dispatcher resolving up to four links at a time.
func New(resolver Resolver, grabber Grabber) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		grabber:  grabber,
		workers:  4,
		sent:     make(map[int64]map[int64]bool),
	}
}

// Dispatch queues files as one linkgrabber package named after the torrent.
func (d *Dispatcher) Dispatch(ctx context.Context, t torbox.Torrent, files []torbox.File) []Result {
	results := make([]Result, len(files))
	for i, f := range files {
		results[i].File = f
	}
	if len(files) == 0 {
		return results
	}

	if err := d.grabber.Ping(ctx); err != nil {
		for i := range results {
			results[i].Outcome = OutcomeFailed
			results[i].Err = err
		}
		return results
	}

	urls := make([]string, len(files))
	g := new(errgroup.Group)
	g.SetLimit(d.workers)
	for i := range files {
		i := i
		if d.alreadySent(t.ID, files[i].ID) {
			results[i].Outcome = OutcomeDuplicate
			continue
		}
		g.Go(func() error {
			link, err := d.resolver.RequestDownloadLink(ctx, t.ID, files[i].ID)
			if err != nil {
				results[i].Outcome = OutcomeFailed
				results[i].Err = err
				return nil
			}
			if link == "" {
				results[i].Outcome = OutcomeFailed
				results[i].Err = errors.New("resolver returned an empty link")
				return nil
			}
			urls[i] = link
			return nil
		})
	}
	g.Wait()

	var pending []int
	var links []string
	for i := range files {
		if urls[i] != "" {
			pending = append(pending, i)
			links = append(links, urls[i])
		}
	}
	if len(links) == 0 {
		return results
	}

	if err := d.grabber.AddLinks(ctx, t.Name, links); err != nil {
		for _, i := range pending {
			results[i].Outcome = OutcomeFailed
			results[i].Err = err
		}
		return results
	}

	for _, i := range pending {
		results[i].Outcome = OutcomeQueued
		d.markSent(t.ID, files[i].ID)
	}

	queued, duplicates, failed := Tally(results)
	logging.Info("dispatch finished",
		zap.String("package", t.Name),
		zap.Int("queued", queued),
		zap.Int("duplicates", duplicates),
		zap.Int("failed", failed))
	return results
}

func (d *Dispatcher) alreadySent(torrentID, fileID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent[torrentID][fileID]
}

func (d *Dispatcher) markSent(torrentID, fileID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sent[torrentID] == nil {
		d.sent[torrentID] = make(map[int64]bool)
	}
	d.sent[torrentID][fileID] = true
}
