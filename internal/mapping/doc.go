// Package mapping manages the persistent mapping between origin element
// GUIDs and target element IDs.
//
// The store is a single JSON file holding one entry per origin GUID plus
// file-level metadata. Writes go through the store's mutex and are flushed
// to disk immediately, so the file is always a complete snapshot.
package mapping
