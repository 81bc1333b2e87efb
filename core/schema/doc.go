/*
Package schema declares typed properties for a resource type and casts raw
attribute values into native Go values.

A JSON:API server hands back attributes as loosely typed JSON: numbers arrive
as float64, timestamps as strings, flags sometimes as "true"/"false". A Schema
names the properties a resource type cares about and how each one is coerced
when a record is constructed.

# Declaring a schema

	s := schema.New()
	s.Add("title", schema.Options{Type: schema.TypeString})
	s.Add("views", schema.Options{Type: schema.TypeInteger, Default: 0})
	s.Add("published_at", schema.Options{Type: schema.TypeTime})
	s.Add("tags", schema.Options{Type: schema.TypeCustom, Caster: schema.CSV})

Schemas can also be declared in YAML (see FromDefinitions):

	properties:
	  title:        { type: string }
	  views:        { type: int, default: 0 }
	  published_at: { type: timestamp }
	  tags:         { type: custom, caster: csv }

# Casting rules

  - nil:     always nil, whatever the declared type
  - untyped: value passes through unchanged
  - integer: lenient; leading digits are parsed, anything else yields 0
  - float:   lenient; leading number is parsed, anything else yields 0.0
  - string:  stringified
  - time:    time.Time passes through, text is parsed; failure is a *ParseError
  - boolean: the string "false" is false, every other string (even "") is true;
    non-strings are true unless they are the bool false
  - custom:  the property's Caster is called; a missing Caster is ErrMissingCaster
  - unknown type tags pass the value through

The lenient numeric casters and the strict time caster are intentionally
different.
*/
package schema
