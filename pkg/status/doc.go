/*
Package status tracks per-document outcomes across a batch run.

	+-----------+      +-------------+
	|  Manager  +------>  Formatter  |
	| (tracked  |      | (messages)  |
	|  docs)    |      +-------------+
	+-----+-----+
	      |
	+-----v------+
	|  Summary   |
	| (footer)   |
	+------------+

🎯 Purpose:
- Record what happened to every document: matches found, replacements
  applied, failures
- Report batch progress while documents are processed concurrently
- Fold the batch into a summary for the CLI footer
*/
package status
