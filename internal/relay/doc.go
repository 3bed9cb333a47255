// Package relay implements the presence registry and the event
// broadcast/routing engine using the actor pattern.
//
// The Hub owns the Registry and all per-connection writers on a single
// goroutine fed by a command channel (no mutexes). Inbound transport events,
// the heartbeat sweep ticker and shutdown all serialize through that loop,
// so register/touch/remove/snapshot are atomic with respect to each other.
// Per-connection write goroutines deliver broadcasts in issue order and
// handle slow clients by disconnecting them.
package relay
