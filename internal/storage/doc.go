// Package storage persists the run's output files.
//
// Every record becomes <id>.ics and every searched postcode of the listing source
// becomes <postcode>.json holding its street catalog. Existing files are overwritten.
// A leading ~/ in the output directory is expanded to the user's home directory.
package storage
