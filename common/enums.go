// Package common keeps enumerations shared by configuration and report
// payload so neither has to import the other.
package common

// Markup dialect of rich-text fields in a payload.
// ENUM(html, markdown)
type PayloadFormat int

// Page orientation of generated documents.
// ENUM(portrait, landscape)
type PageOrientation int

// Landscape reports whether page width and height have to be swapped.
func (o PageOrientation) Landscape() bool {
	return o == PageOrientationLandscape
}
