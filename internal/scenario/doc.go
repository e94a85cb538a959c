// Package scenario runs declarative override scenarios.
//
// A scenario is a YAML or CUE file listing override steps and the values
// every user should then be served:
//
//	name: new-ui-rollback
//	description: force the new UI on, then back off
//	steps:
//	  - op: set_feature_true
//	    key: new-ui
//	  - op: set_feature_false
//	    key: new-ui
//	expect:
//	  - key: new-ui
//	    value: false
//
// Run applies the steps to a fresh in-memory SQLite store and checks each
// expectation against a sample of users. The resulting trace is canonical
// JSON and can be compared against a golden file with RunWithGolden.
package scenario
