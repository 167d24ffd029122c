/*
Package engine wires the transactional core's pieces into a runnable
system: an epoch manager, a set of Workers assigned round-robin to
simulated NUMA nodes (each owning a commit.Coordinator, a
logger.Logger, and an xct.Xct), and the
page pool / snapshot store / index collaborators from pkg/pagepool and
pkg/index.

New/Start/Stop follow a constructor-validates-and-wires shape: a
constructor that validates configuration and wires dependencies, and
explicit Start/Stop rather than relying on finalizers.
*/
package engine
