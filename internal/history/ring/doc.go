// Package ring provides the bounded command history store.
//
// A Ring keeps the most recent command lines in insertion order. Index 0 is
// always the oldest surviving entry and Len()-1 the most recent one. When a
// push would exceed the capacity the oldest entry is evicted.
//
// # Insertion Policy
//
// Push takes a Policy describing which lines are recorded:
//
//	r := ring.New(128)
//	r.Push("ls -la", ring.AlwaysAdd())
//	r.Push("   ", ring.SkipFiltered(nil))          // dropped: blank
//	r.Push("ls -la", ring.IgnoreConsecutiveDups()) // dropped: same as newest
//	r.Push("make", ring.EraseDups())               // earlier "make" removed first
//
// # Searching
//
// Search scans from a starting index toward older or newer entries and wraps
// around exactly once, which is what interactive search commands and the
// substring event designator need.
package ring
