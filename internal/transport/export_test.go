package transport

import "github.com/cenkalti/backoff/v5"

// SetNewBackOff lets external tests swap the backoff policy.
func SetNewBackOff(r *Retrying, f func() backoff.BackOff) { r.newBackOff = f }
