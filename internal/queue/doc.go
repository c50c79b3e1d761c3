// Package queue holds the listening queue: an ordered list of content items
// with a current-position pointer and playback-intent flags.
package queue
