// Package recognition resolves detected rectangles to catalog candidates.
//
// Rectangles are grouped by detection type (see equipment.Assign) and each
// non-empty bucket runs as its own goroutine:
//
//  1. Extract a descriptor for every rectangle. A rectangle whose extraction
//     fails is finalized with an empty candidate list and left out of every
//     request.
//  2. Quick phase: one batched priority request for detection types that
//     support it. Other types skip the network and treat every rectangle as
//     unmatched.
//  3. Rectangles with at least one quick candidate are final. The rest go
//     into a single normal-mode request. If that request fails, the queued
//     rectangles are finalized empty and the quick matches are kept.
//
// # Partial Failure
//
// A bucket whose quick request fails contributes no entries and its error is
// recorded in Report.Failures. Buckets never affect each other. When the
// overall timeout expires, buckets that have not settled are recorded as
// failures the same way, including a bucket whose normal-mode request was cut
// short by the deadline.
//
// In the resulting map a missing rectangle id means "not attempted" and an
// empty list means "attempted, unmatched".
//
// # Concurrency
//
// Descriptor extraction is CPU bound; a semaphore shared by all buckets
// limits it to Options.ExtractWorkers concurrent extractions so the network
// phases of other buckets are not starved. The source image is only read.
package recognition
