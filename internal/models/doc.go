// Package models defines the domain types shared by the playcast sync pipeline.
//
// Catalog data is adapted into typed records at the client boundary:
//   - [PlaylistMetadata] : playlist name, description and cover image
//   - [TrackEntry] : a playable track; a nil *TrackEntry in a playlist is an unavailable item
//   - [PlaylistSnapshot] : metadata plus the ordered entry list fetched once per run
//
// Per-track sync results use the tagged [Outcome] (resolved, skipped, failed) instead of errors
// for control flow, and [RunRecord] / [TrackRecord] describe what the sync ledger persists.
package models
