// Package cache keeps synthesized audio in memory so replaying an item with
// the same voice and speed skips the synthesis round trip. Entries are
// evicted least recently used first once the byte budget is exceeded.
package cache
