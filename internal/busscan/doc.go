// Package busscan flags buses whose signal flow is effectively dead or that
// look like receive buses nobody feeds.
//
// A dead bus has at least one upstream source and every one of them is
// deactivated or itself broken by upstream deactivation: its effective input
// is silence. An orphan bus is a name-heuristic match (bus/return/fx/...)
// with zero upstream sources. The orphan check is explicitly approximate and
// guarded to under-flag: only audio and group tracks qualify, and a track
// whose input is wired to hardware is never an orphan.
package busscan
