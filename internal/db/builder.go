package db

import "strings"

// IndexBuilder assembles the device index schema step by step.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a HASH index named name.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{
			Name:        name,
			StorageType: StorageHash,
		},
	}
}

// Prefix restricts the index to keys under the given prefixes.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds a field matched with [v v] ranges, such as the postal code.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name: name,
		Type: IndexFieldNumeric,
	})
	return b
}

// TagExact adds a case-sensitive TAG field separated on "|", which does not
// occur in registry values, so each stored string is a single tag.
func (b *IndexBuilder) TagExact(name string) *IndexBuilder {
	return b.TagWithOpts(name, "|", true)
}

// TagWithOpts adds a TAG field with an explicit separator and case handling.
func (b *IndexBuilder) TagWithOpts(name, separator string, caseSensitive bool) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:             name,
		Type:             IndexFieldTag,
		TagSeparator:     separator,
		TagCaseSensitive: caseSensitive,
	})
	return b
}

// Build validates the accumulated definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// String renders the definition as a single FT.CREATE line for logs.
func (idx *IndexDefinition) String() string {
	parts := []string{"FT.CREATE", idx.Name}
	if idx.StorageType != "" {
		parts = append(parts, "ON", string(idx.StorageType))
	}
	if len(idx.Prefixes) > 0 {
		parts = append(parts, "PREFIX")
		parts = append(parts, idx.Prefixes...)
	}
	parts = append(parts, "SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		parts = append(parts, f.Name)
		switch f.Type {
		case IndexFieldTag:
			parts = append(parts, "TAG")
			if f.TagSeparator != "" {
				parts = append(parts, "SEPARATOR", f.TagSeparator)
			}
			if f.TagCaseSensitive {
				parts = append(parts, "CASESENSITIVE")
			}
		case IndexFieldNumeric:
			parts = append(parts, "NUMERIC")
		}
	}
	return strings.Join(parts, " ")
}
