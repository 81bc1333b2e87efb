package schema

import "strings"

// Type is the declared type of a property.
type Type string

const (
	TypeNone    Type = ""
	TypeInteger Type = "integer"
	TypeString  Type = "string"
	TypeFloat   Type = "float"
	TypeTime    Type = "time"
	TypeBoolean Type = "boolean"
	TypeCustom  Type = "custom"
)

// typeAliases maps alternative spellings accepted in definitions.
var typeAliases = map[string]Type{
	"int":       TypeInteger,
	"integer":   TypeInteger,
	"string":    TypeString,
	"float":     TypeFloat,
	"double":    TypeFloat,
	"time":      TypeTime,
	"timestamp": TypeTime,
	"datetime":  TypeTime,
	"bool":      TypeBoolean,
	"boolean":   TypeBoolean,
	"custom":    TypeCustom,
}

// ParseType normalizes a type tag. Unrecognized tags are kept verbatim
// so that casting can pass their values through.
func ParseType(s string) Type {
	key := strings.ToLower(strings.TrimSpace(s))
	if t, ok := typeAliases[key]; ok {
		return t
	}
	return Type(key)
}

// Known reports whether t is one of the built-in types.
func (t Type) Known() bool {
	switch t {
	case TypeNone, TypeInteger, TypeString, TypeFloat, TypeTime, TypeBoolean, TypeCustom:
		return true
	}
	return false
}

// Caster converts a raw value for a custom property.
type Caster func(value any) (any, error)

// Property is a single typed attribute of a resource.
type Property struct {
	Name    string
	Type    Type
	Default any
	Caster  Caster // only used when Type is TypeCustom
}

// Options configures a property when it is added to a Schema.
type Options struct {
	Type    Type
	Default any
	Caster  Caster
}
