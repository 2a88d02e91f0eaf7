// Package pipeline runs a scrape from source selection to written calendars.
//
// A Runner drives its primary source into an in-memory buffer. If the primary fails
// structurally and a fallback is configured, the buffer is discarded and the fallback
// runs instead. Only a complete, duplicate-free buffer is handed to the Emitter, so a
// failed run never writes calendars.
package pipeline
