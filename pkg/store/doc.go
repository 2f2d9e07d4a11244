// Package store holds the in-progress record of one editing session.
//
// Values are kept in wire form (see package typed) in a tree mirroring the
// record: embedded fieldsets are maps stamped with "@type", array fields are
// ordered sequences. SetField and GetField address values by dotted path and
// apply the codec of the target field. Every edit re-arms a debounce timer;
// the snapshot consumer only observes the record once edits have been quiet
// for the configured window.
package store
