package upsert

import "github.com/ariel-frischer/mergelog/internal/store"

// Overrides optionally pins the title and date field names instead of
// auto-detecting them from the schema. An override only applies when the
// named field exists with a compatible kind; otherwise detection falls
// back to the first field of the required kind.
type Overrides struct {
	Title string
	Date  string
}

// Properties holds the resolved field names for a target database.
type Properties struct {
	Title string
	Date  string
}

// Resolve maps the logical title and date roles onto concrete field names
// in the schema. It tolerates arbitrary field names: only the kinds matter.
// Returns *SchemaError naming the missing kind when the database has no
// field of a required kind at all.
func Resolve(schema store.Schema, o Overrides) (Properties, error) {
	title, err := resolveField(schema, store.KindTitle, o.Title)
	if err != nil {
		return Properties{}, err
	}
	date, err := resolveField(schema, store.KindDate, o.Date)
	if err != nil {
		return Properties{}, err
	}
	return Properties{Title: title, Date: date}, nil
}

func resolveField(schema store.Schema, kind store.FieldKind, override string) (string, error) {
	if override != "" {
		if got, ok := schema.Lookup(override); ok && got == kind {
			return override, nil
		}
	}
	if name, ok := schema.First(kind); ok {
		return name, nil
	}
	return "", &SchemaError{Kind: kind}
}
