package core

// DateKey is the column key of the period column. Its cells are the dataset keys
// rather than a record field.
const DateKey = "date"

// Channel keys as they appear in the data file.
const (
	KeyBBCOne    = "bbcone"
	KeyBBCTwo    = "bbctwo"
	KeyBBCThree  = "bbcthree"
	KeyBBCFour   = "bbcfour"
	KeyBBCNews24 = "bbcnews24"
	KeyCBBC      = "cbbc"
	KeyCBeebies  = "cbeebies"
)

// Column pairs a field key with its header label.
type Column struct {
	Key   string
	Label string
}

// Columns is an ordered mapping from column key to display label.
type Columns []Column

// DefaultColumns is the table layout: the date column followed by the seven channels.
var DefaultColumns = Columns{
	{Key: DateKey, Label: "Date"},
	{Key: KeyBBCOne, Label: "BBC One"},
	{Key: KeyBBCTwo, Label: "BBC Two"},
	{Key: KeyBBCThree, Label: "BBC Three"},
	{Key: KeyBBCFour, Label: "BBC Four"},
	{Key: KeyBBCNews24, Label: "BBC News 24"},
	{Key: KeyCBBC, Label: "CBBC"},
	{Key: KeyCBeebies, Label: "CBeebies"},
}

// Keys returns the column keys in order.
func (c Columns) Keys() []string {
	keys := make([]string, len(c))
	for i, col := range c {
		keys[i] = col.Key
	}
	return keys
}

// Index returns the position of key, or -1.
func (c Columns) Index(key string) int {
	for i, col := range c {
		if col.Key == key {
			return i
		}
	}
	return -1
}

// Has reports whether key is a configured column.
func (c Columns) Has(key string) bool {
	return c.Index(key) >= 0
}

// Label returns the display label for key.
func (c Columns) Label(key string) (string, bool) {
	if i := c.Index(key); i >= 0 {
		return c[i].Label, true
	}
	return "", false
}

// Channels returns every column except the date column.
func (c Columns) Channels() Columns {
	out := make(Columns, 0, len(c))
	for _, col := range c {
		if col.Key != DateKey {
			out = append(out, col)
		}
	}
	return out
}
