// Package progressrepo persists the last-viewed index of a browsing session
// through a go-repository-bun repository.
//
// The cache itself is purely in-memory and session-scoped; the only thing
// worth keeping across sessions is where the user left off. Store adapts the
// repository surface to the thin assetcache.ProgressStore port: one
// BrowseProgress row per collection, read once at session start and upserted
// best-effort as the current index advances.
//
// Reads and writes go straight to the repository: this data is tiny, rarely
// touched and must never be stale across devices, so decorating it with a
// cache would buy nothing.
package progressrepo
