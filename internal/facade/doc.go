// Package facade synthesizes forwarding modules.
//
// A facade keeps the identity of a contract module but defines no types: every
// public top-level contract type is forwarded to the seed module that
// implements it. Synthesize builds the contract doc-id tables, binds each
// doc-id to exactly one seed type, checks the version policy, rewrites the
// contract and encodes the result. A partial facade patches an existing module
// instead, forwarding only the types it does not define itself.
//
// Problems are collected as diagnostics. Synthesize never stops at the first
// failure; when any error was recorded it returns a *SynthesisError listing
// all of them together with the partially filled Result.
package facade
