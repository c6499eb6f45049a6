// Package den builds an in-memory "knowledge den": a tree of concepts
// extracted from visited web pages, rooted at a search query.
//
// This package contains domain types and interfaces only. Implementations
// live in subdirectories named after their primary dependency (e.g.
// gemini/, sqlite/, goquery/) or concern (accrete/, layout/, session/).
package den
