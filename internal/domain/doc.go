// Package domain holds the learner's progression records and the errors
// shared by the engine. The persisted shapes (ProgressState, StreakRecord,
// DailyCounter) keep stable JSON field names; the decoders in decode.go read
// them back tolerantly. Pure transitions over these types live in the
// subpackages clock, leveling, streak, ratelimit and sequencer.
package domain
