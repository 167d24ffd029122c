/*
Package xct holds the per-worker transaction context: the state machine
a caller drives through Begin/AddToReadSet/AddToWriteSet/Precommit/Abort,
and the bounded read/write sets that back it.

Precommit itself lives in pkg/commit, which takes an *Xct plus the epoch
manager and logger as collaborators; xct only owns the state a single
in-flight transaction accumulates.
*/
package xct
