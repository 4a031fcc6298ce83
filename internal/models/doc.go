// Package models defines the domain entities for a playlist sync run.
//
// The package contains two categories of types:
//
// 1. Pipeline values, created and consumed within a single run:
//   - [PlaylistEntry] : one row of the input list (video id and display title)
//   - [WorkItem] : an entry selected for an insert attempt
//   - [Failure] : a rejected insert with its reason
//   - [RunOutcome] : counters and failures accumulated by the inserter
//
// 2. Persistent entities:
//   - [Run] : a completed run stored in the history database
//
// The Repository[T] interface defines the data access operations implemented in package repositories.
package models
