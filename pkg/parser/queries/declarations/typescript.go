// Package declarations holds queries for existing type declarations.
package declarations

// TSQueries captures the names of interfaces and type aliases declared in a
// typed source. Only typed grammars have these nodes.
const TSQueries = `
(interface_declaration
  name: (type_identifier) @declaration.name) @declaration.definition

(type_alias_declaration
  name: (type_identifier) @declaration.name) @declaration.definition
`
