// Package models defines domain entities for the Harp library synchronization engine.
//
// The package contains two categories of types:
//
// 1. Local cache records:
//   - [Song] : a library entry as cached on-device, possibly partially hydrated
//   - [LyricLine] : one timed lyric entry, decoded from LRC text
//
// 2. Remote index documents:
//   - [LibraryIndex] : the single remote source-of-truth JSON document
//   - [RemoteSong] : the per-song metadata record inside the index
//   - [Playlist] : an ordered, duplicate-free set of song ids
//
// A Song's hydration state is derived, not stored: a record with a DriveID and
// no AudioBlob is remote-only, a record with an AudioBlob is hydrated. Hydration
// is sticky; nothing in the engine moves a hydrated song back to remote-only.
//
// [EncodeIndex] and [DecodeIndex] implement the index codec, including the
// version gate on meta.version.
package models
