// Package model defines the stable record types and error taxonomy shared by
// the anchor and authorization registries.
//
// Records are boundary types: registries hand out copies, never references
// into their internal storage.
package model
