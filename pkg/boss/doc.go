/*
Package boss implements the timed conflict-resolution challenge.

An Encounter combines a puzzle.ConflictSystem with a countdown Timer and an
interrupt Coordinator. The timer ticks once per second; every tick runs to
completion (including interrupt evaluation) before the next one can start.
Wrong resolutions cost time, and reaching zero defeats the player exactly once.

Each Encounter is an explicit per-session object: nothing in this package is global.
*/
package boss
