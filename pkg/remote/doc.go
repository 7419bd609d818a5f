/*
Package remote maintains the client-side picture of objects living inside
a probed application.

A Session owns the command channel and the registries that decide which Go
type represents which remote class. Objects come back from lookups as
descriptors; the session decodes them into an ObjectBase (identity, path,
class chain, plus every unrecognized field retained verbatim) and, through
the registry, into whatever specialization is bound to their class chain.

Object state is deliberately split in two: the descriptor snapshot is
immutable once built, while Properties reads and writes live Qt properties
with a fresh round trip every time.
*/
package remote
