// Package sitemapper maps websites by crawling them, cataloguing their
// interactive surface, and matching that surface against a library of
// known user flow patterns (login, search, checkout, ...).
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, sqlite/).
package sitemapper
