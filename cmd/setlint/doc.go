// Command setlint analyzes Ableton Live session files for silent-failure
// risks: deactivated tracks, unexplained device power-offs, broken routing
// chains, and dead or orphaned buses. It writes a verbose and a compact JSON
// report per run and keeps a local run history.
package main
