// Package keys provides local-first key management for registry identities.
//
// Stable:
//   - Pure, deterministic primitives for role-key derivation and address
//     formatting.
//
// Experimental:
//   - Filesystem-backed key storage and convenience helpers (KeyStore and
//     related functions). These are local-first utilities and are not part of
//     the long-term protocol contract.
package keys
