// Package library is the sync and mutation engine for the music library.
//
// The remote library index document is the source of truth; the local sqlite
// cache is a reconciled replica whose binary payloads are hydrated lazily on
// first playback. Mutations are remote-first: the drive and the index are
// updated before the local cache, so an interrupted mutation leaves the
// remote consistent and the next sync repairs the replica.
package library
