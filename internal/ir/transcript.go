package ir

// Transcript is an archived move log.
//
// Transcripts are written only on explicit request and are never used to
// resume a session. Seq orders transcripts in the archive; the digests are
// computed when the transcript is written and let a reader detect tampering
// or drift without replaying.
type Transcript struct {
	ID        string  `json:"id"`
	Seq       int64   `json:"seq"`
	PatternID string  `json:"pattern_id"`
	SessionID string  `json:"session_id"`
	Moves     MoveLog `json:"moves"`

	// Final is the layout after the last move, in slot order.
	Final []Strand `json:"final"`

	LogDigest     string `json:"log_digest"`
	LayoutDigest  string `json:"layout_digest"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}
