// Package firehose is the HTTP surface of the ledger: a WebSocket feed
// of accepted operations plus JSON endpoints for submitting operations
// and reading tweets.
//
// The firehose server implements engine.Notifier. Each accepted
// operation becomes one canonical-JSON frame, delivered to every
// connected subscriber in acceptance order. Subscribers that fall
// behind their buffer are dropped rather than slowing the writer.
package firehose
