// Package preview rebuilds the braid drawings from a move log.
//
// Two models are provided. The loose model draws each strand as a vertical
// thread and the moving strand as one diagonal per step. The tight model
// stacks one band of cells per step. Both start from the pattern's setup and
// replay every move from step 0 on each call; neither looks at a live
// session layout, so a clean replay doubles as a consistency check of the
// log.
//
// Column order is a list of strand ids. After each move the moved strand is
// taken out of the list and put back at one edge:
//
//	loose: index 0 when the destination is in the first half, else the end
//	tight: the end when the origin is in the first half, else index 0
//
// The two rules point in opposite directions on purpose; the tight model
// pictures weft tension, the loose model the thread path.
package preview
