// Package bilibili provides the HTTP client and wire models for the
// Bilibili web API endpoints the archiver consumes.
//
// Three endpoints are covered:
//   - the dynamics history feed (space_history), paginated by a numeric
//     offset cursor and a has_more flag
//   - the opus space feed, paginated by an opaque string offset
//   - the opus detail document, a list of typed content modules
//
// The client carries the cookie-based session context (SESSDATA, bili_jct,
// buvid3, DedeUserID) and browser-like headers on every request. API
// responses arrive in a code/message/data envelope; a non-zero code is
// surfaced as a typed error so callers can distinguish auth and risk
// control failures from transport problems.
package bilibili
