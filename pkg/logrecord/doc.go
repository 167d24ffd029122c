/*
Package logrecord implements the self-describing, 8-byte-aligned log
record family the transactional core produces.

Every variant shares a 16-byte common header:

	offset 0  : u16 log_type_code
	offset 2  : u16 log_length           (bytes, multiple of 8)
	offset 4  : u32 storage_id           (0 for engine-global)
	offset 8  : u64 tag                  (epoch<<32 | ordinal | flags)

and exposes two capabilities: ApplyToRecord, used at commit against a
live record.Envelope already located by the index, and ApplyToPage, used
during recovery against a freshly loaded page reached only through the
storage-family-specific addressing the log entry itself carries (the
array offset, or the hash key/bin/slot).
*/
package logrecord
