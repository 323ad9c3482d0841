package recognition

import (
	"context"
	"fmt"
	"image"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/ironsheep/equip-scan-mcp/internal/equipment"
	"github.com/ironsheep/equip-scan-mcp/internal/geometry"
)

// Matcher submits a batch of descriptors to the matching service. The
// returned rows are aligned with contents.
type Matcher interface {
	Match(ctx context.Context, dt equipment.DetectionType, contents []equipment.Descriptor, quick bool) ([][]equipment.MatchCandidate, error)
}

// Extractor computes the descriptor of one region of an image.
type Extractor interface {
	Extract(img image.Image, box geometry.Box, dt equipment.DetectionType) (equipment.Descriptor, error)
}

// Options tunes an Orchestrator.
type Options struct {
	// Timeout bounds a whole Recognize call. Zero means no limit beyond the
	// caller's context.
	Timeout time.Duration

	// ExtractWorkers caps concurrent descriptor extractions across all
	// buckets. Defaults to runtime.NumCPU().
	ExtractWorkers int

	// Logger receives bucket failure reports. Defaults to log.Default().
	Logger *log.Logger
}

// Report is the outcome of one Recognize call.
type Report struct {
	// Results holds one entry per rectangle of every settled bucket.
	Results equipment.Result `json:"results"`

	// DetectionTypes records the bucket each input rectangle was routed to,
	// whether or not the bucket settled.
	DetectionTypes map[equipment.RectID]equipment.DetectionType `json:"detection_types"`

	// Failures holds the error of every bucket that contributed nothing.
	Failures map[equipment.DetectionType]error `json:"-"`
}

// Orchestrator runs the two-phase matching protocol. It is safe for
// concurrent use.
type Orchestrator struct {
	matcher   Matcher
	extractor Extractor
	timeout   time.Duration
	workers   chan struct{}
	logger    *log.Logger
}

func New(m Matcher, e Extractor, opts Options) *Orchestrator {
	workers := opts.ExtractWorkers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		matcher:   m,
		extractor: e,
		timeout:   opts.Timeout,
		workers:   make(chan struct{}, workers),
		logger:    logger,
	}
}

type bucketOutcome struct {
	dt      equipment.DetectionType
	results equipment.Result
	err     error
}

// Recognize resolves rects from img, which must be the screenshot they were
// detected in. The only error is an unknown category; every matching
// failure is reported per bucket in the Report instead.
func (o *Orchestrator) Recognize(ctx context.Context, img image.Image, rects []equipment.Rectangle, category equipment.Category) (*Report, error) {
	if _, err := equipment.ParseCategory(string(category)); err != nil {
		return nil, err
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	report := &Report{
		Results:        make(equipment.Result, len(rects)),
		DetectionTypes: make(map[equipment.RectID]equipment.DetectionType, len(rects)),
		Failures:       make(map[equipment.DetectionType]error),
	}

	buckets := equipment.Assign(rects, category)
	outcomes := make(chan bucketOutcome, len(buckets))
	pending := make(map[equipment.DetectionType]bool, len(buckets))

	for dt, members := range buckets {
		for _, r := range members {
			report.DetectionTypes[r.ID] = dt
		}
		pending[dt] = true
		go func(dt equipment.DetectionType, members []equipment.Rectangle) {
			outcome := bucketOutcome{dt: dt}
			defer func() {
				if r := recover(); r != nil {
					outcome.results, outcome.err = nil, fmt.Errorf("bucket panicked: %v", r)
				}
				outcomes <- outcome
			}()
			outcome.results, outcome.err = o.runBucket(ctx, img, dt, members)
		}(dt, members)
	}

	collect := func(out bucketOutcome) {
		delete(pending, out.dt)
		if out.err != nil {
			o.logger.Printf("recognition: %s bucket failed: %v", out.dt, out.err)
			report.Failures[out.dt] = out.err
			return
		}
		for id, candidates := range out.results {
			report.Results[id] = candidates
		}
	}

	for len(pending) > 0 {
		select {
		case out := <-outcomes:
			collect(out)
		case <-ctx.Done():
			for drained := false; !drained; {
				select {
				case out := <-outcomes:
					collect(out)
				default:
					drained = true
				}
			}
			for dt := range pending {
				err := fmt.Errorf("bucket did not settle: %w", ctx.Err())
				o.logger.Printf("recognition: %s bucket failed: %v", dt, err)
				report.Failures[dt] = err
				delete(pending, dt)
			}
		}
	}

	return report, nil
}

// runBucket runs the protocol for one detection type. A non-nil error means
// the bucket contributes nothing.
func (o *Orchestrator) runBucket(ctx context.Context, img image.Image, dt equipment.DetectionType, members []equipment.Rectangle) (equipment.Result, error) {
	results := make(equipment.Result, len(members))

	descs, err := o.extractAll(ctx, img, dt, members)
	if err != nil {
		return nil, err
	}

	var ids []equipment.RectID
	var contents []equipment.Descriptor
	for i, r := range members {
		if descs[i].err != nil {
			o.logger.Printf("recognition: rectangle %d (%s) extraction failed: %v", r.ID, dt, descs[i].err)
			results[r.ID] = []equipment.MatchCandidate{}
			continue
		}
		ids = append(ids, r.ID)
		contents = append(contents, descs[i].desc)
	}
	if len(ids) == 0 {
		return results, nil
	}

	quick := make([][]equipment.MatchCandidate, len(ids))
	if dt.QuickEligible() {
		quick, err = o.match(ctx, dt, contents, true)
		if err != nil {
			return nil, fmt.Errorf("quick match: %w", err)
		}
	}

	var queuedIDs []equipment.RectID
	var queued []equipment.Descriptor
	for i, id := range ids {
		if len(quick[i]) > 0 {
			results[id] = quick[i]
			continue
		}
		queuedIDs = append(queuedIDs, id)
		queued = append(queued, contents[i])
	}
	if len(queuedIDs) == 0 {
		return results, nil
	}

	normal, err := o.match(ctx, dt, queued, false)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("normal match: %w", err)
		}
		o.logger.Printf("recognition: %s normal match failed, %d rectangles left unmatched: %v", dt, len(queuedIDs), err)
		for _, id := range queuedIDs {
			results[id] = []equipment.MatchCandidate{}
		}
		return results, nil
	}

	for i, id := range queuedIDs {
		results[id] = normal[i]
	}
	return results, nil
}

// match calls the matcher and guards against responses that do not line
// up with the request.
func (o *Orchestrator) match(ctx context.Context, dt equipment.DetectionType, contents []equipment.Descriptor, quick bool) ([][]equipment.MatchCandidate, error) {
	rows, err := o.matcher.Match(ctx, dt, contents, quick)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(contents) {
		return nil, fmt.Errorf("got %d candidate lists for %d descriptors", len(rows), len(contents))
	}
	for i, row := range rows {
		if row == nil {
			rows[i] = []equipment.MatchCandidate{}
		}
	}
	return rows, nil
}

type extraction struct {
	desc equipment.Descriptor
	err  error
}

// extractAll computes descriptors for members in parallel, bounded by the
// shared worker semaphore. It only fails when ctx ends first.
func (o *Orchestrator) extractAll(ctx context.Context, img image.Image, dt equipment.DetectionType, members []equipment.Rectangle) ([]extraction, error) {
	out := make([]extraction, len(members))

	var wg sync.WaitGroup
	for i, r := range members {
		select {
		case o.workers <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, fmt.Errorf("extraction: %w", ctx.Err())
		}

		wg.Add(1)
		go func(i int, box geometry.Box) {
			defer wg.Done()
			defer func() { <-o.workers }()
			defer func() {
				if r := recover(); r != nil {
					out[i].err = fmt.Errorf("extraction panicked: %v", r)
				}
			}()
			out[i].desc, out[i].err = o.extractor.Extract(img, box, dt)
		}(i, r.Box)
	}
	wg.Wait()

	return out, nil
}
