// Package tag implements the tag scanning and region transformation engine.
//
// A tag is a named pair of markers embedded in plain text, usually inside a
// comment of the host language:
//
//	/* [DEBUG/] */ console.log(state); /* [/DEBUG] */
//	<!-- [DOC/] --><p>Only in the docs build</p><!-- [/DOC] -->
//	// [DEBUG/]
//	// [/DEBUG]
//	[SPEC/]bare markers work too[/SPEC]
//
// An open marker may carry an inline path test after the slash, separated by
// whitespace: [DEBUG/ src/dev/]. The test gates Replace and Remove for that
// region instead of the operation-level test.
//
// The engine works in four steps:
//
//   - Scan finds the markers of one tag name in a document.
//   - Match pairs them into top-level regions, nesting same-name pairs LIFO.
//   - The path test evaluator (package pathtest) decides whether a conditional
//     replace or remove applies to a region.
//   - Pick, Replace and Remove produce the transformed document.
//
// Documents are never modified in place. Text outside transformed regions is
// preserved byte for byte, so the same input and options always produce the
// same output.
package tag
