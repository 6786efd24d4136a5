package models

// BlankValue is how an absent value is rendered in the report.
const BlankValue = " "

// Attribute is one named column of a user's attribute row.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AttributeRecord is a user's attribute row in source column order.
// The first attribute is the user id.
type AttributeRecord []Attribute

// Values returns the attribute values in column order.
func (r AttributeRecord) Values() []string {
	values := make([]string, len(r))
	for i, attr := range r {
		values[i] = attr.Value
	}
	return values
}

// AttributeTable holds every user's attribute row keyed by user id.
type AttributeTable struct {
	header  []string
	records map[string]AttributeRecord
}

// NewAttributeTable creates an empty table with the given column names.
func NewAttributeTable(header []string) *AttributeTable {
	return &AttributeTable{
		header:  append([]string(nil), header...),
		records: make(map[string]AttributeRecord),
	}
}

// Header returns the column names in source order.
func (t *AttributeTable) Header() []string {
	return append([]string(nil), t.header...)
}

// Put stores a row, padding short rows with blanks and dropping fields
// beyond the header. It reports how many fields were dropped. A repeated
// key replaces the earlier row.
func (t *AttributeTable) Put(fields []string) (dropped int) {
	if len(fields) == 0 || len(t.header) == 0 {
		return len(fields)
	}
	record := make(AttributeRecord, len(t.header))
	for i, name := range t.header {
		value := BlankValue
		if i < len(fields) {
			value = fields[i]
		}
		record[i] = Attribute{Name: name, Value: value}
	}
	t.records[fields[0]] = record
	if len(fields) > len(t.header) {
		return len(fields) - len(t.header)
	}
	return 0
}

// Lookup returns the user's row.
func (t *AttributeTable) Lookup(userID string) (AttributeRecord, bool) {
	record, ok := t.records[userID]
	return record, ok
}

// Blank returns a row with every column rendered as a single space.
func (t *AttributeTable) Blank() AttributeRecord {
	record := make(AttributeRecord, len(t.header))
	for i, name := range t.header {
		record[i] = Attribute{Name: name, Value: BlankValue}
	}
	return record
}

// Len returns the number of stored rows.
func (t *AttributeTable) Len() int {
	return len(t.records)
}
