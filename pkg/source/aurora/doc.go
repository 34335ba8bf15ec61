// Package aurora reads star map data from an Aurora 4X save database.
//
// The save is a SQLite file (AuroraDB.db). A [Source] opens it read-only
// through modernc.org/sqlite and extracts, for one game and one viewing
// race:
//
//   - the systems the race has surveyed and their jump point links
//     ([Source.SystemConnections])
//   - the race's colonies and their distribution over systems, plus
//     foreign colonies in surveyed systems ([Source.Population])
//   - the system holding the race's capital ([Source.CapitalSystemID])
//
// [Source.Load] runs all three concurrently and returns a
// [starmap.Dataset]. Any failure is reported as a single
// [errors.ErrCodeSource] error.
package aurora
