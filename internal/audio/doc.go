// Package audio reassembles chunked speech audio and plays MP3 through
// oto/v3. MP3 frames are decoded with go-mp3.
package audio
