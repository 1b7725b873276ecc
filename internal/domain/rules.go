package domain

// Type tags accepted by FieldRule.Type.
const (
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeString  = "string"
	TypeList    = "list"
)

// FieldRule maps one source path to one canonical field.
// A nil Source marks a derived field that only ever takes its Default.
type FieldRule struct {
	Source  *string           `json:"source" yaml:"source"`
	Type    string            `json:"type,omitempty" yaml:"type,omitempty"`
	Default any               `json:"default,omitempty" yaml:"default,omitempty"`
	Fields  map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// RuleTable is keyed by canonical dot path.
type RuleTable map[string]FieldRule

// SupplierConfig is one entry of the supplier mapping file.
type SupplierConfig struct {
	Name     string    `json:"-" yaml:"-"`
	Endpoint string    `json:"endpoint" yaml:"endpoint"`
	Fields   RuleTable `json:"fields" yaml:"fields"`
}

// Vocabulary is the controlled amenity vocabulary. Buckets must be disjoint
// once normalized.
type Vocabulary struct {
	General []string `json:"general" yaml:"general"`
	Room    []string `json:"room" yaml:"room"`
}

// MergeRule configures how one canonical field is reconciled. Key and
// SubfieldStrategies only apply to the list strategy.
type MergeRule struct {
	Strategy           string            `json:"strategy" yaml:"strategy"`
	Key                string            `json:"key,omitempty" yaml:"key,omitempty"`
	SubfieldStrategies map[string]string `json:"subfield_strategies,omitempty" yaml:"subfield_strategies,omitempty"`
}

// MergeConfig lists merged fields. Fields without a rule keep the value of
// the first record seen for an identifier; nothing is merged implicitly.
type MergeConfig struct {
	Fields map[string]MergeRule `json:"fields" yaml:"fields"`
}
