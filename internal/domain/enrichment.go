package domain

// EnrichState labels how a best-effort enrichment call concluded.
// Degraded and unknown outcomes are consumed as neutral defaults by the
// article builder, never propagated as errors.
type EnrichState int

const (
	EnrichOK EnrichState = iota
	EnrichDegraded
	EnrichUnknown
)

// OAResult is the tri-state outcome of an open-access lookup.
type OAResult struct {
	State  EnrichState
	Reason string
	IsOA   *bool
	URL    string
}

// OAOpen marks a confirmed open-access record with its best location.
func OAOpen(url string) OAResult {
	yes := true
	return OAResult{State: EnrichOK, IsOA: &yes, URL: url}
}

// OAClosed marks a confident negative (the service knows the record).
func OAClosed() OAResult {
	no := false
	return OAResult{State: EnrichOK, IsOA: &no}
}

// OADegraded marks a lookup that was attempted but failed (transport,
// HTTP, decode); status stays unset.
func OADegraded(reason string) OAResult {
	return OAResult{State: EnrichDegraded, Reason: reason}
}

// OAUnknown marks a lookup skipped before any call was made; status
// stays unset.
func OAUnknown(reason string) OAResult {
	return OAResult{State: EnrichUnknown, Reason: reason}
}
