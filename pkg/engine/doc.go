/*
Package engine applies a paragraph's batch of replacements to its run
structure without offset drift.

	+-------------+
	|   Session   |
	| (per ¶ edit)|
	+------+------+
	       |
	+------+------+
	|  Strategy   |
	| (what text) |
	+-------------+

🎯 Purpose:
- Resolves every match through a pluggable strategy before any mutation
- Applies the batch right-to-left against the original offsets
- Splices at segment granularity, preserving unaffected remainders

🔄 Flow:
1. Session.Apply snapshots the covered runs of every match
2. The strategy decides replacement text + hyperlink directive per match
3. Matches are applied in descending start-offset order
4. Every match gets an explicit applied/failed outcome

📝 Design Philosophy:
Because edits are applied from the highest offset down, no already-applied
edit can invalidate the offsets of one not yet applied — the structural fix
for the classic stale-offset defect in batch text replacement. Failures are
scoped to their match: the session commits partially and reports everything
rather than aborting a paragraph halfway through in silence.
*/
package engine
