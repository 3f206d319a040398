// Package history keeps a linear, cursor-addressed log of document snapshots.
//
// Every edit pushes a new snapshot; undo and redo move the cursor. Rapid
// edits of the same kind are coalesced into a single entry, and a batch
// collapses several pushes into one undo step.
package history
