// Package engine turns generation requests into batches of completeness
// statements.
//
// A request names a class and a template. The Generator resolves instances
// of the class on the endpoint, instantiates the template once per
// instance, and optionally records the batch in the store.
//
// Event Processing Flow:
// 1. Request validated and its limit checked against the generator's cap
// 2. Batch stamped with a run ID and a logical seq from Clock.Next()
// 3. Resources resolved (failure aborts the batch; no partial output)
// 4. Template instantiated per resource, in resource order
// 5. Run and statements written to the store when a recorder is configured
//
// GenerateAll runs independent requests concurrently with a bounded
// errgroup. Results keep request order regardless of completion order, and
// the first failure cancels the remaining requests.
//
// Ordering uses seq, never wall-clock time. CreatedAt is informational.
package engine
