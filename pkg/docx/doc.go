/*
Package docx adapts Office Open XML word documents to the document model.

	+----------------------+
	|        File          |
	| (zip container)      |
	+----+------------+----+
	     |            |
	+----v-----+ +----v--------------+
	| word/    | | word/_rels/       |
	| document | | document.xml.rels |
	|  .xml    | | (hyperlinks)      |
	+----------+ +-------------------+

🎯 Purpose:
- Open/Load a .docx container and expose its paragraphs as model paragraphs
- Track every paragraph's byte range in word/document.xml
- Serialize by splicing only modified paragraphs over their original bytes
- Round-trip the relationship table so hyperlink edits reach the container

📝 Design Philosophy:
Only w:t text is editable. Everything else in a paragraph (pPr, bookmarks,
breaks, drawings) is preserved as opaque zero-width runs the engine never
covers, and paragraphs the engine never touched are emitted byte-identical.
Paragraph indexing follows the innermost-w:p rule: a paragraph nested in a
text box is indexed itself, never through its host paragraph.
*/
package docx
