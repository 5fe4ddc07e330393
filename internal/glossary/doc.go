// Package glossary reads fixed translations that are put into the cache
// before a run, so well-known UI strings never cost a backend call.
package glossary
