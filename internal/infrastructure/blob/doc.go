// Package blob stores submission artifacts (original images, annotated images
// and PDF reports) and returns the permanent public URL of each.
//
// Three drivers exist: S3 for production, a local directory served by the API
// itself, and an in-memory store for tests. Every artifact gets a random name
// so that uploads never collide or overwrite each other.
package blob
