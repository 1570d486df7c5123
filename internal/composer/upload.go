package composer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/lagoonchat/lagoon/internal/api"
	"github.com/lagoonchat/lagoon/internal/log"
)

// UploadClient is the slice of the API client the upload manager needs.
type UploadClient interface {
	UploadMedia(ctx context.Context, path string, onProgress api.ProgressFunc) (api.Attachment, error)
}

// UploadManager drives one concurrent upload batch at a time.
//
// Policy decisions, all deliberate:
//   - admission is checked once, before any network call
//   - a second Submit while a batch is outstanding fails fast with
//     ErrUploadInFlight instead of racing the admission check
//   - completion is all-or-nothing: one failed file discards the whole
//     batch, including files that already succeeded, so the user gets a
//     single unambiguous retry point
type UploadManager struct {
	client     UploadClient
	draft      *Draft
	limit      int
	logger     log.Logger
	inFlight   atomic.Bool
	onProgress func(float64) // Republishes aggregate progress; may be nil
}

// NewUploadManager creates an upload manager bound to a draft.
// limit is the externally supplied attachment limit for this session.
func NewUploadManager(client UploadClient, draft *Draft, limit int, logger log.Logger) *UploadManager {
	return &UploadManager{
		client: client,
		draft:  draft,
		limit:  limit,
		logger: logger,
	}
}

// Submit uploads the given files concurrently and returns the produced
// attachments in the original file order, regardless of completion order.
// A successful batch is appended to the draft before the in-flight guard is
// released, so a later admission check never reads a count that a settled
// batch has not landed in yet.
//
// On any failure the entire batch is discarded and ErrUploadFailed is
// returned; the draft's attachments are untouched and its upload counters
// are back to zero. Submit blocks until the batch settles; run it from a
// worker goroutine.
func (m *UploadManager) Submit(ctx context.Context, paths []string) ([]api.Attachment, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	if !m.inFlight.CompareAndSwap(false, true) {
		return nil, ErrUploadInFlight
	}
	defer m.inFlight.Store(false)

	// Admission check: the ready attachments plus this batch must fit the
	// limit. Checked once; the in-flight guard keeps it from racing.
	current := m.draft.AttachmentCount()
	if current+len(paths) > m.limit {
		return nil, fmt.Errorf("%w: %d + %d > %d", ErrAttachmentLimit, current, len(paths), m.limit)
	}

	m.draft.beginBatch(len(paths))
	defer m.draft.endBatch()
	m.publishProgress(0)

	agg := newProgressAggregator(len(paths))
	results := make([]api.Attachment, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			att, err := m.client.UploadMedia(gctx, path, func(loaded, total int64) {
				m.publishProgress(agg.update(i, loaded, total))
			})
			if err != nil {
				return err
			}
			results[i] = att
			return nil
		})
	}

	// Join all tasks. The group context is canceled on the first error, so
	// sibling uploads abort instead of finishing into the void; results of
	// tasks that did finish are discarded below with the rest of the batch.
	if err := g.Wait(); err != nil {
		m.logger.Warn("upload batch failed, discarding",
			"files", len(paths),
			"error", err)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	m.publishProgress(1)
	m.draft.appendAttachments(results)
	m.logger.Debug("upload batch settled", "files", len(paths))

	return results, nil
}

// InFlight reports whether a batch is currently outstanding.
func (m *UploadManager) InFlight() bool {
	return m.inFlight.Load()
}

func (m *UploadManager) publishProgress(f float64) {
	m.draft.setUploadProgress(f)
	if m.onProgress != nil {
		m.onProgress(f)
	}
}

// progressAggregator folds per-task upload fractions into their mean.
type progressAggregator struct {
	mu        sync.Mutex
	fractions []float64
}

func newProgressAggregator(n int) *progressAggregator {
	return &progressAggregator{fractions: make([]float64, n)}
}

// update records task i at loaded/total bytes and returns the new mean over
// all tasks.
func (a *progressAggregator) update(i int, loaded, total int64) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if total > 0 {
		a.fractions[i] = float64(loaded) / float64(total)
	} else {
		// Zero-byte file: the single read reporting it counts as done.
		a.fractions[i] = 1
	}

	var sum float64
	for _, f := range a.fractions {
		sum += f
	}
	return sum / float64(len(a.fractions))
}
