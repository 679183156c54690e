/*
Package document models the run structure of a word-processing document.

	+-------------+
	|  Document   |
	| (rel table) |
	+------+------+
	       |
	+------+------+
	|  Paragraph  |
	| (run owner) |
	+------+------+
	       |
	+------+------+
	|     Run     |
	| (text unit) |
	+-------------+

🎯 Purpose:
- Owns paragraphs, runs and the hyperlink relationship table
- Provides the mutation primitives the replacement engine splices with
- Keeps formatting opaque: the engine copies it, never interprets it

🔄 Flow:
1. A container adapter (pkg/docx) or a test builds a Document
2. pkg/index derives logical text and segment maps from paragraphs
3. pkg/engine mutates run composition through the paragraph primitives
4. The adapter serializes modified paragraphs back to storage

📝 Design Philosophy:
Paragraph identity is stable across edits and run order is document order.
SplitRun deliberately keeps the left portion inside the original run object:
offsets recorded before a batch of right-to-left edits stay valid for every
run prefix, which is what makes batch application immune to offset drift.
*/
package document
