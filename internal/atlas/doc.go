// Package atlas packs rectangles onto fixed-size square pages for texture
// atlas generation. Items are sorted tallest first and laid out on horizontal
// shelves; a page is closed once neither its current shelf nor a new shelf
// below can hold the next item. Items are never rotated or resized.
//
// The package performs no I/O and keeps no state between calls, so Pack may be
// called concurrently for independent jobs.
package atlas
