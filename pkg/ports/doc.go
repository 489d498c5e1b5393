/*
Package ports defines the driven ports (interfaces) for the gitquest engine.

These interfaces decouple the lesson engine from external implementations, allowing
acts to come from embedded content or a directory and sessions to live in memory,
on disk, or in Redis.

# Key Interfaces

  - ActLoader: Loads act definitions (steps and entry point).
  - SessionStore: Persists and loads LessonState by session ID.
  - SettingsStore: Holds the opaque settings blob.
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
