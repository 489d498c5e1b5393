/*
Package session manages player sessions.

Manager serializes access to persisted lesson state (per-process mutexes plus an
optional distributed lock) and applies engine actions as load, act, save.

Session is the per-player context object: it owns the player's lesson state, the
boss encounter in progress (and through it the conflict system and timer), and the
puzzle board currently open. Nothing is process-wide, so many sessions can run
side by side in one server.
*/
package session
