// Package xmlschema holds the runtime shared by bound schema types: parse
// flags, optional values, xs:token and xs:decimal scalars, the Element
// capability, and typed validation errors located by element path.
package xmlschema
