// package models defines the data model for the Harp library sync engine
package models

// Default metadata values applied when a song's tags are absent.
const (
	DefaultArtist = "Anonymous"
	DefaultAlbum  = "Unknown"
)

// LyricLine is a single timed lyric entry, the decoded form of an LRC line.
type LyricLine struct {
	Time float64 `json:"time"` // start time in seconds
	Text string  `json:"text"`
}

// Song is a locally cached library entry. Blob fields are nil until hydrated;
// a nil AudioBlob means "not yet hydrated", not "corrupt".
type Song struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	Duration float64 `json:"duration"` // seconds; 0 is the "unknown" sentinel
	AddedAt  int64   `json:"addedAt"`  // epoch millis, immutable

	AudioBlob []byte `json:"-"`
	ImageBlob []byte `json:"-"`
	LyricBlob []byte `json:"-"`

	Lyrics []LyricLine `json:"lyrics,omitempty"`

	DriveID      string `json:"driveId,omitempty"`
	DriveImageID string `json:"driveImageId,omitempty"`
	DriveLyricID string `json:"driveLyricId,omitempty"`
}

// Hydrated reports whether the song's audio payload is cached locally.
func (s *Song) Hydrated() bool {
	return len(s.AudioBlob) > 0
}

// Valid reports whether the song is playable or at least fetchable.
// A song with neither a remote audio reference nor a local audio payload is invalid.
func (s *Song) Valid() bool {
	return s.DriveID != "" || s.Hydrated()
}

// RemoteSong is the per-song metadata record persisted in the library index.
// It never carries binary payloads and, by policy, never carries parsed
// lyrics written by this client; lyrics live in a separate remote object.
type RemoteSong struct {
	ID           string      `json:"id"`
	DriveID      string      `json:"driveId"`
	DriveImageID string      `json:"driveImageId,omitempty"`
	DriveLyricID string      `json:"driveLyricId,omitempty"`
	Title        string      `json:"title"`
	Artist       string      `json:"artist"`
	Album        string      `json:"album"`
	Duration     float64     `json:"duration"`
	AddedAt      int64       `json:"addedAt"`
	MimeType     string      `json:"mimeType,omitempty"`
	Lyrics       []LyricLine `json:"lyrics,omitempty"` // honored on read for indexes written by older clients
}

// Placeholder converts a remote record into a metadata-only local Song.
// All blob fields are left empty; payloads are fetched on demand.
func (r RemoteSong) Placeholder() *Song {
	return &Song{
		ID:           r.ID,
		Title:        r.Title,
		Artist:       r.Artist,
		Album:        r.Album,
		Duration:     r.Duration,
		AddedAt:      r.AddedAt,
		Lyrics:       r.Lyrics,
		DriveID:      r.DriveID,
		DriveImageID: r.DriveImageID,
		DriveLyricID: r.DriveLyricID,
	}
}

// RemoteEntry builds the index record for a song, with the mime type of its
// audio object. Parsed lyrics are intentionally not copied.
func (s *Song) RemoteEntry(mimeType string) RemoteSong {
	return RemoteSong{
		ID:           s.ID,
		DriveID:      s.DriveID,
		DriveImageID: s.DriveImageID,
		DriveLyricID: s.DriveLyricID,
		Title:        s.Title,
		Artist:       s.Artist,
		Album:        s.Album,
		Duration:     s.Duration,
		AddedAt:      s.AddedAt,
		MimeType:     mimeType,
	}
}

// Playlist is an ordered set of song ids. Duplicates are forbidden;
// referential integrity against songs is enforced lazily at read time.
type Playlist struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	SongIDs   []string `json:"songIds"`
	CreatedAt int64    `json:"createdAt"` // epoch millis
}

// Contains reports whether the playlist references the given song id.
func (p *Playlist) Contains(songID string) bool {
	for _, id := range p.SongIDs {
		if id == songID {
			return true
		}
	}
	return false
}
