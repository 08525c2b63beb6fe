// Package events carries progression milestones out of the engine.
//
// The engine emits a ProgressEvent after an advance has been committed
// (level-up, round or curriculum completion, milestone payout, first
// completion of the day). Handlers registered on an EventEmitter decide how
// to celebrate them; the engine never depends on who is listening.
package events
