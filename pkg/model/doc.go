// Package model defines the typed registration form model shared by the
// validation engine, the submission workflow and the front ends. A Schema is
// an ordered list of Field descriptors plus paired-field rules and the fixed
// messages shown on success or failure. State holds the current input as an
// immutable key/value mapping; every edit produces a new State so observers
// never see partially applied changes. ValidationErrors carries one message
// per failing field key, with GeneralKey reserved for form-level failures.
package model
