// Package pdf provides the core object model for reading and writing PDF
// files: the Object sum type (Null, Boolean, Integer, Real, String, Name,
// Array, Dict, Stream, Reference) and the typed error kinds that package
// lexer, parser, model, writer, filter, and analyzer build on.
//
// This package treats a PDF file as a set of indirect objects, addressed by
// (object number, generation) and possibly pointing to one another through
// Reference values. Objects are written sequentially but may be read back
// in any order once a Document has resolved the cross-reference table.
//
//	lx := lexer.New(r)
//	ref, obj, err := parser.New(lx, parser.DefaultOptions()).ParseIndirectObject()
//
//	doc := model.New(parser.DefaultOptions())
//	// ... doc.Set(ref, obj) for every object read or built ...
//	w := writer.New(doc, out, writer.DefaultOptions())
//	err = w.WriteAll()
//
// Subpackages implement the lexer (lexer), the object parser and stream
// recovery (parser), the document model and page tree (model), the writer
// and cross-reference emission (writer), stream filters (filter), and the
// page content analyzer (analyzer).
package pdf
