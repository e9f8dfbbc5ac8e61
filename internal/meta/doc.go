// Package meta holds the module metadata model and the Host that serves it to
// the mapping builder, the difference rules and the facade synthesizer.
//
// Modules are persisted as msgpack documents (*.apimod) carrying a schema
// version. Once loaded into a Host, namespaces, types and members are stored in
// arenas and addressed through Symbol handles; index 0 of every arena is the
// "absent" sentinel, so the zero Symbol never names anything.
//
// Identity of two handles is decided by Host.Same, which compares doc-ids.
// Two loaded versions of the same library therefore agree on identity even
// though their handles differ.
package meta
