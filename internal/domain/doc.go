// Package domain defines the core business entities of the emotional
// journaling engine: memories, relationships, invitations, user profiles and
// the derived avatar/SET snapshots. Entities validate themselves; derived
// values are computed by the scoring subpackage and owned by no one.
package domain
