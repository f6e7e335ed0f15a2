// Package track provides the track catalog entities.
package track

// Record represents the descriptive metadata known for a Roon track.
// Fields mirror what the control plane reports; a real deployment would
// resolve these through the control-plane client on demand.
type Record struct {
	RoonTrackID string `json:"roon_track_id" yaml:"roon_track_id" mapstructure:"roon_track_id"`
	Title       string `json:"title" yaml:"title" mapstructure:"title"`
	Artist      string `json:"artist" yaml:"artist" mapstructure:"artist"`
	Album       string `json:"album" yaml:"album" mapstructure:"album"`
	DurationMS  int    `json:"duration_ms" yaml:"duration_ms" mapstructure:"duration_ms"`
	TrackNumber int    `json:"track_number" yaml:"track_number" mapstructure:"track_number"`
}

// Directory is an exact-match lookup from a Roon track ID to its metadata.
// It is immutable once built; callers treat a miss as a normal outcome,
// not an error.
type Directory struct {
	records map[string]Record
}

// NewDirectory builds a directory from the given records. Records with an
// empty ID are skipped; on duplicate IDs the last record wins.
func NewDirectory(records []Record) *Directory {
	m := make(map[string]Record, len(records))
	for _, r := range records {
		if r.RoonTrackID == "" {
			continue
		}
		m[r.RoonTrackID] = r
	}
	return &Directory{records: m}
}

// Lookup returns the record for the given ID and whether it exists.
func (d *Directory) Lookup(roonTrackID string) (Record, bool) {
	r, ok := d.records[roonTrackID]
	return r, ok
}

// Size returns the number of records in the directory.
func (d *Directory) Size() int {
	return len(d.records)
}
