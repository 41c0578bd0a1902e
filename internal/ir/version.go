package ir

// Version constants for archived transcripts and the engine.
const (
	// TranscriptVersion is the archived transcript schema version.
	TranscriptVersion = "1"

	// EngineVersion is the kumihimo engine version.
	EngineVersion = "0.1.0"
)
