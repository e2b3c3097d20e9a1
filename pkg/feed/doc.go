// Package feed contains the core domain of the archiver: the canonical
// Post record, the normalizer that flattens the API's divergent card
// payload shapes into it, the paginator that walks a user's dynamics
// history to exhaustion, and the planner that expands posts into media
// download tasks.
//
// Three payload shapes exist on the wire: plain posts (text plus an
// optional picture list), video submissions (marked by a videos field,
// with a single cover image), and forwards (carrying the original post as
// a serialized sub-document that may itself be permanently unavailable).
// Normalization is pure and total: malformed or partially missing payloads
// degrade to empty fields, never to an error.
package feed
