// Package structure assembles classified budget lines into the chapter
// hierarchy and validates its totals.
//
// # Building
//
// [Builder.Build] consumes the classified line stream in order. Section
// lines open nodes on a depth-keyed stack and record the line range each
// section owns; ancestors implied by a dotted code but never printed are
// synthesized with [model.BudgetNode.Synthesized] set. Partida lines are
// collected into a pending list together with the provisionally active
// section, which is deliberately not trusted.
//
// # Reattachment
//
// After every range is final, each pending partida is attached to the
// deepest section whose range contains its source line. When that differs
// from the provisional section the move is recorded as a
// [model.Relocation]; partidas whose source line precedes every range
// land in the unassigned bucket instead of being dropped.
//
// # Totals
//
// A post-order pass fills [model.BudgetNode.TotalComputed] with the sum
// of child totals and partida amounts. Nodes whose declared total
// disagrees beyond tolerance are reported as [model.Inconsistency]
// values; the nodes stay in the tree. Partidas carrying a full
// quantity/price/amount triplet are additionally arithmetic-checked.
package structure
