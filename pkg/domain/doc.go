/*
Package domain contains the core domain models for the gitquest lesson engine.

It defines the entities the progression state machine works with: Acts, Steps,
Transitions, and the runtime LessonState of a player. The package is kept pure and
free of I/O, persistence, or presentation concerns, following Hexagonal Architecture
principles.

# Key Entities

  - Act: A chapter of the tutorial with a declared entry step.
  - Step: One pedagogical unit (cinematic, dialog, terminal, editor, concept, complete).
    Its type-specific data lives in exactly one payload field.
  - Transition: An outcome-conditioned edge to another step.
  - LessonState: The mutable runtime snapshot of a session (current step, terminal log, effects).
  - TerminalLine: One tagged line of the simulated terminal. The log is append-only and is the
    single source of truth for derived progress (see DeriveFlags).
*/
package domain
