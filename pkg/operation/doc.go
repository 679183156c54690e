/*
Package operation provides the document-level search and replace operations.

	+--------------+
	|   Operator   |
	| (per doc)    |
	+------+-------+
	       |
	  +----+-----------------------+
	  |            |               |
	+-v-------+ +--v---------+ +---v--------+
	|  index  | |   match    | |   engine   |
	| (text)  | | (patterns) | | (splicing) |
	+---------+ +------------+ +------------+

🎯 Purpose:
- SearchParagraphs: pattern scan over every paragraph, no mutation
- ReplaceAll: batch application grouped per paragraph, optionally parallel
- SearchReplace / Sub: the literal and template convenience forms

📝 Design Philosophy:
An Operator is bound to one document and carries a private pattern cache,
so repeated invocations with the same pattern source skip recompilation
without any process-global registry. Paragraph batches are independent by
construction, which is what makes the parallel mode safe.
*/
package operation
