/*
Package puzzle validates the mini-game arrangements of gitquest.

Every validator is a pure comparison against an authored solution:

  - Merge: an ordered list of code blocks must equal the solution element by element.
  - Rebase: an ordered list of commit IDs must equal the target timeline.
  - Cherry-pick: the final history must equal the expected one, contain the single key
    commit at its expected position, and exclude every distractor.
  - Conflicts: each hunk of a boss file resolves to current, incoming, or both.

Boards (MergeBoard, RebaseBoard, CherryPickBoard) hold the player's working arrangement
for one open level. They are owned by a single view, are not safe for concurrent use,
and are never persisted.
*/
package puzzle
