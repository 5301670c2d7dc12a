// Package model provides the intermediate representation (IR) for parsed
// budget documents.
//
// This package defines the user-facing data structures produced by the
// parsing pipeline. All detection and classification stages ultimately
// produce these types, making them the primary API for consuming parsed
// budgets.
//
// # Input Types
//
// The pipeline consumes positioned words grouped by page:
//
//   - [Word] - a token with its bounding box, top-left origin coordinates
//   - [Page] - one page of words with optional page dimensions
//   - [Line] - one visual row in final reading order with its global number
//
// # Budget Structure
//
// The parsed hierarchy is a tree of [BudgetNode] values:
//
//	node := result.Chapters[0]
//	for _, sub := range node.Children {
//	    fmt.Println(sub.Code, sub.Name, sub.TotalComputed)
//	}
//
// Each node carries a dotted code ("01", "01.04", "01.04.02"), the declared
// total when the document printed one, the recursively computed total, and
// the priced line items ([Partida]) attached at that level.
//
// # Attribution
//
// A [LineRange] records the span of global line numbers during which a node
// was the open section. Partidas are attributed to the node whose range
// contains their source line, which corrects out-of-order classification.
//
// # Results
//
// [ParseResult] bundles the chapter forest with a [Validation] report,
// relocation and unassigned-partida records, and [Stats] counters. Its JSON
// form follows the contract used by downstream consumers: node fields
// serialize with Spanish keys (codigo, nombre, total_declarado,
// total_computado, partidas, subcapitulos).
package model
