// Package match finds the target-platform equivalent of a source track and
// decides whether the best candidate is good enough to report.
//
// # Scoring policy
//
// Query and candidate text are normalized first: lowercased, diacritics
// stripped, bracketed qualifiers and "feat." tails removed, whitespace
// collapsed. Title and artist similarity are each a blend of token-set
// overlap and sequence similarity; the combined score weighs title at 0.7
// and artist at 0.3, with a capped penalty for duration mismatch. Candidates
// below the confidence floor are rejected outright; a low-confidence guess
// is worse than reporting no match.
//
// Scoring is pure and deterministic: identical inputs always produce the
// same ranking and the same accept/reject decision. Ties resolve to the
// earlier candidate, preserving the platform's own relevance order.
//
// # Searching
//
// [Engine.Search] drives a browser session against the target platform's
// search page and is paced by a rate limiter so that batch conversion does
// not hammer the platform. Throttling observed during a search fails only
// that search and sets the session's rate-limit signal; the batch caller
// decides whether to continue.
package match
