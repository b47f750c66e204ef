/*
Package querylog records the queries made through the instrumented mongo types in mongoex.

Each call produces exactly one Event. It is recorded as started before the driver is called,
and marked completed in place once the driver returns without error, so a failed query
is still visible in the log, it just never completes.

A profiler (or a test) drains the log once a unit of work is done:

	for logger.HasPending() {
		ev, _ := logger.TakeNext()
		...
	}
*/
package querylog
