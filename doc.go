// Package rx is a push-based reactive streams library: a composable algebra
// of observable sequences, an operator graph that transforms and combines
// them, and a scheduler abstraction that drives time-based operators.
//
// An Observable is a lazy specification of a stream of values. Nothing
// happens until Subscribe is called; each call to Subscribe starts an
// independent run unless the Observable is multicast through a Subject or a
// ConnectableObservable. Subscribing returns a Disposable: disposing it
// unwinds the whole downstream computation and is the only cancellation
// primitive in the library.
//
// Events follow the grammar next* (complete | error)?: any number of values
// followed by at most one terminal event. Operators are responsible for
// preserving that grammar even when given a misbehaving source; see
// Protect.
package rx
