// Package eval evaluates flags for a user against a store.
//
// Only the off path is implemented: a record whose On field is false serves
// Variations[OffVariation] to every user with reason OFF. Records written by
// the override API are always off, which is what makes an override apply to
// all users. Targeting rules, rollouts and prerequisites are not evaluated;
// a record that is on yields ErrTargetingUnsupported.
package eval
