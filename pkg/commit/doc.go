/*
Package commit implements the five-phase precommit protocol: lock the
write set in address order, fence and read the commit epoch, verify the
read set, apply writes and publish new tags, then hand off to the
logger.

It is a single function rather than a long-lived goroutine or actor:
one entry point, a loop over write entries performed under the
records' own locks rather than a single mutex.
*/
package commit
