// Package isolate reduces an HTML document to a single element, its
// ancestor chain and its descendants. Unrelated subtrees, unused stylesheet
// rules and comment nodes are stripped, and pending timers of the host
// environment are cancelled before pruning starts.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, douceur/, rod/).
package isolate
