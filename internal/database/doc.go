// Package database provides the local storage layer for bidmatch.
//
// The package defines the [Store] interface and its BoltDB implementation.
// Nothing here is authoritative: the store only remembers who is signed in
// (and, when no system keyring is available, their token) plus a handful
// of cached UI selections.
//
// # Buckets
//
//   - session:    "current" -> Session JSON
//   - selections: key -> arbitrary JSON
//
// Open the store explicitly and pass it where it is needed:
//
//	db, err := database.NewBolt(path)
//	if err != nil { ... }
//	defer db.Close()
package database
