// Package tasks implements the playlist sync pipeline with real-time progress reporting.
//
// # Pipeline
//
// [PlaylistEngine.Run] drives one run through four steps:
//
//  1. Load the TSV source list (internal/source)
//  2. Fetch the ids already in the destination playlist with [FetchExisting],
//     which drains the lazy [Pages] iterator; any failure aborts the run
//  3. [Plan] the work: source order, minus existing ids, optionally minus repeats
//  4. Insert with an [Inserter] until the items run out or the daily limit of
//     successful inserts is reached
//
// Reporting the outcome and persisting the run are left to the caller.
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel. Sends block until the
// receiver takes the update or the context ends, so the CLI sees every line.
//
// # Pacing and Timeouts
//
// The inserter spaces attempts with a golang.org/x/time/rate limiter. [WithCallTimeout] gives
// each remote call its own deadline; an expired insert is recorded as a failure like any other.
package tasks
