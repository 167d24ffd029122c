/*
Package pagepool gives the transactional core's page pool, NUMA
allocator, and snapshot composer a minimal but real implementation, so
recovery replay is actually runnable end to end.

Pool partitions volatile page arenas by an integer NodeID standing in
for a NUMA node, with child-pointer installation done by CAS on
atomic.Pointer[Page] the way the core's lock-word discipline requires.
SnapshotStore is a bbolt-backed implementation of logrecord.PageApplier,
using one bucket per storage id.
*/
package pagepool
