// Package classify assigns a structural tag to every line of the
// reading-order stream: chapter and subchapter headings, partida lines in
// their several printed shapes, detached value rows, section totals,
// description text, and noise.
//
// # Tags
//
// Classification is a pure transition function. [LineClassifier.Classify]
// maps one line and the current [Context] to a [ClassifiedLine] carrying
// a [Tag] from a closed vocabulary plus the fields extracted from the
// line (section code and name, partida code, unit, summary, the numeric
// triplet, total amounts). Rules are tried in fixed priority; the first
// match wins, and lines matching nothing while a partida is open become
// description continuations.
//
// # Overlap Heuristics
//
// Budget PDFs frequently print the unit glyph on top of the code column,
// so the unit token vanishes from the extracted text. Lines whose code is
// followed directly by the summary are still recognized through a set of
// strict code heuristics, tagged [TagPartidaHeader] with Overlap set, and
// given the unit sentinel. Tokens that glue the code to the first summary
// word without a space are split at the case transition first.
//
// # Context
//
// The only inter-line state is whether a partida is open. [Context.Next]
// advances it: partida headers open, value rows close, and any section
// heading or total closes it as well. [LineClassifier.ClassifyAll]
// threads the context through a whole document and then joins all-caps
// summary continuation lines onto their header.
package classify
