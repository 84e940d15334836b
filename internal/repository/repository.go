package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UpdatedAtField is the timestamp column every scoped save must carry.
const UpdatedAtField = "updated_at"

// SaveOptions narrows an update to a subset of entity fields. A nil or
// empty Fields slice means the save is unscoped and writes every
// column; a scoped save therefore always writes at least updated_at.
type SaveOptions struct {
	Fields []string
}

// FieldSet returns the effective field set for a scoped save:
// deduplicated caller fields plus updated_at, whether or not the
// caller listed it. Returns nil for an unscoped save.
func (o SaveOptions) FieldSet() []string {
	if len(o.Fields) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(o.Fields)+1)
	fields := make([]string, 0, len(o.Fields)+1)
	for _, f := range o.Fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}
	if _, ok := seen[UpdatedAtField]; !ok {
		fields = append(fields, UpdatedAtField)
	}
	return fields
}
