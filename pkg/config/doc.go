/*
Package config loads replacement-rule configuration files.

	+-----------+     +------------+
	|  Load     +----->  Parser    |
	| (by ext)  |     | (registry) |
	+-----------+     +-----+------+
	                        |
	            +-----------+-----------+
	            |                       |
	      +-----v-----+           +-----v-----+
	      | YAML      |           | HCL       |
	      | (.yaml)   |           | (.hcl)    |
	      +-----------+           +-----------+

🎯 Purpose:
- One config = a list of search/replace rules plus output options
- Parsers self-register; the file extension picks the parser
- Validation compiles every regex rule up front

Example YAML:

	rules:
	  - find: "short"
	    replace: "ultra long"
	  - find: '(\w+) world'
	    replace: "$1 earth"
	    regex: true
	    ignore_case: true
	output: out.docx
*/
package config
