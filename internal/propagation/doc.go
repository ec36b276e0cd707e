// Package propagation computes downstream break impact from deactivated
// tracks over the routing graph.
//
// The computation is a multi-source breadth-first search seeded from every
// deactivated track at depth 0. The FIFO frontier finalizes each node at its
// true minimum hop depth the first time it is dequeued and never re-enqueues
// it, so the traversal is linear in nodes plus edges and terminates on cyclic
// bus graphs. Alongside the depth, each reached track records the set of
// deactivated sources achieving that minimum.
package propagation
