// Package mvg is a client for the public MVG journey planning API:
// station search, departures, route planning, nearby stops, service
// messages and line listings.
//
// The API is unofficial and unauthenticated. Station identifiers may be
// reassigned upstream at any time, so they are resolved per invocation
// and never persisted. Every call is single-shot request/response with
// no retries and no caching.
package mvg
