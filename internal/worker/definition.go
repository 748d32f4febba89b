package worker

import "context"

// Definition always declines: goto-definition is served by the
// coordinator's separate index-backed lookup, not by the compiler
// service (spec.md §4.6 "Definition: out of scope for this worker; the
// router consults its index instead"). The bool return lets the
// coordinator tell "worker has no opinion" apart from "worker looked and
// found nothing."
func (w *Worker) Definition(ctx context.Context, rawURI string, line, char int) (handled bool) {
	return false
}
