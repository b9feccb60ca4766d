// Package hooks holds queries for reactive-state hook calls.
package hooks

// Queries captures call expressions whose callee is an identifier or a
// member expression. The same pattern compiles against every grammar;
// callee names are filtered in Go (useState, useRef and their
// React.-qualified forms) and typed grammars expose existing type
// arguments through the call's type_arguments field.
const Queries = `
(call_expression
  function: [(identifier) (member_expression)] @hook.callee
  arguments: (arguments) @hook.arguments) @hook.call
`
