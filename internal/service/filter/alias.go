package filter

// Alias ties one user-facing field name to a record store column.
type Alias struct {
	Field  string
	Column string
}

// AliasTable maps the field names users (and the classifier) speak in
// onto the columns the record store actually has, and back. Unknown
// fields pass through unchanged so new store columns keep working
// without a code change here.
type AliasTable struct {
	toColumn map[string]string
	toField  map[string]string
}

// NewAliasTable builds the lookup from an ordered list; when several
// fields point at the same column, the first one listed is the
// canonical name echoed back to users.
func NewAliasTable(aliases []Alias) *AliasTable {
	t := &AliasTable{
		toColumn: make(map[string]string, len(aliases)),
		toField:  make(map[string]string, len(aliases)),
	}
	for _, a := range aliases {
		t.toColumn[a.Field] = a.Column
		if _, seen := t.toField[a.Column]; !seen {
			t.toField[a.Column] = a.Field
		}
	}
	return t
}

// DefaultAliasTable covers the dealership inventory schema plus the
// colloquial and English names customers actually type.
func DefaultAliasTable() *AliasTable {
	return NewAliasTable([]Alias{
		{"品牌", "廠牌"},
		{"brand", "廠牌"},
		{"車名", "車款"},
		{"model", "車款"},
		{"年份", "年份"},
		{"year", "年份"},
		{"顏色", "顏色"},
		{"color", "顏色"},
		{"價格", "車輛售價"},
		{"售價", "車輛售價"},
		{"price", "車輛售價"},
		{"里程", "行駛里程"},
		{"mileage", "行駛里程"},
	})
}

// ColumnFor resolves a user-facing field to its store column. Fields
// with no alias are returned as-is.
func (t *AliasTable) ColumnFor(field string) string {
	if col, ok := t.toColumn[field]; ok {
		return col
	}
	return field
}

// FieldFor is the reverse lookup, used when echoing store columns back
// to the user. It always returns the canonical alias.
func (t *AliasTable) FieldFor(column string) string {
	if field, ok := t.toField[column]; ok {
		return field
	}
	return column
}
