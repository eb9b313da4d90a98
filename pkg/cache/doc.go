// Package cache provides a generic [Cache] with in-memory and Redis backends.
//
// Query results shown on the user page are cached here so that a mutation
// can refresh them in one place. [GetOrSet] collapses concurrent misses for
// the same key into a single load; [Refresh] forces a reload.
package cache
