/*
Package index gives the ordered-index collaborator a concrete interface
plus a single in-memory reference implementation for tests: the
transactional core treats it as an ordered key/value provider with the
same record contract everywhere else uses, with no opinion on how keys
are actually organized. Production-grade indexing (masstree or
otherwise) is out of scope.
*/
package index
