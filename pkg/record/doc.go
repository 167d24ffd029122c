// Package record defines the record envelope: a version tag paired with
// an opaque payload, addressable by a stable pointer for the record's
// entire lifetime.
package record
