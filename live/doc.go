// Package live subscribes to the geOps realtime WebSocket feed behind
// s-bahn-muenchen-live.de and derives arrival estimates for a corridor
// target station from S-Bahn position deltas.
//
// One connection per run: after the subscribe handshake (full state,
// delta subscription, bounding box) the message loop is the sole owner of
// the position table, so no locking is involved. The subscription ends
// with the collection window, on interrupt, or on the first socket
// failure; there is no reconnect.
package live
