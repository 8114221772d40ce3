// Package models defines domain entities and persistence interfaces for the playlist audio downloader.
//
// The package contains two categories of types:
//
// 1. Pipeline values: Lightweight structs passed between pipeline stages
//   - [Playlist] : Ordered playlist metadata resolved from a playlist URL
//   - [TrackEntry] : One playlist item with title/uploader/index metadata
//   - [Naming] : The album/artist decision for a run, computed once up front
//   - [Tags] : The metadata set embedded into a downloaded Opus file
//
// 2. Persistent entities: Database-backed models with full lifecycle management
//   - [PersistedDownload] : A completed track download in the history database
//
// Persistent entities implement the [Model] interface providing ID generation, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
