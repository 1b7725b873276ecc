package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"hotelmerge/internal/domain"
	"hotelmerge/internal/mapping"
	"hotelmerge/internal/merge"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}
	return b, nil
}

// LoadSuppliers reads the supplier mapping file. The order of suppliers in
// the file is the order their records are merged in.
func LoadSuppliers(path string) ([]domain.SupplierConfig, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var out []domain.SupplierConfig
	if isYAML(path) {
		out, err = decodeSuppliersYAML(b)
	} else {
		out, err = decodeSuppliersJSON(b)
	}
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}
	if err := ValidateSuppliers(out); err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}
	return out, nil
}

// decodeSuppliersJSON walks the top-level object token by token; a map
// would lose declaration order.
func decodeSuppliersJSON(b []byte) ([]domain.SupplierConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("suppliers: expected a JSON object")
	}
	var out []domain.SupplierConfig
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)
		var sc domain.SupplierConfig
		if err := dec.Decode(&sc); err != nil {
			return nil, fmt.Errorf("supplier %s: %w", name, err)
		}
		sc.Name = name
		out = append(out, sc)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeSuppliersYAML(b []byte) ([]domain.SupplierConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, errors.New("suppliers: expected a mapping")
	}
	out := make([]domain.SupplierConfig, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		name := doc.Content[i].Value
		var sc domain.SupplierConfig
		if err := doc.Content[i+1].Decode(&sc); err != nil {
			return nil, fmt.Errorf("supplier %s: %w", name, err)
		}
		sc.Name = name
		out = append(out, sc)
	}
	return out, nil
}

// ValidateSuppliers rejects declarations no run could use.
func ValidateSuppliers(cfgs []domain.SupplierConfig) error {
	if len(cfgs) == 0 {
		return errors.New("no suppliers declared")
	}
	seen := map[string]bool{}
	for _, c := range cfgs {
		if strings.TrimSpace(c.Name) == "" {
			return errors.New("supplier with empty name")
		}
		if seen[c.Name] {
			return fmt.Errorf("supplier %s declared twice", c.Name)
		}
		seen[c.Name] = true
		if strings.TrimSpace(c.Endpoint) == "" {
			return fmt.Errorf("supplier %s: empty endpoint", c.Name)
		}
		for _, f := range []string{domain.FieldID, domain.FieldDestinationID} {
			if _, ok := c.Fields[f]; !ok {
				return fmt.Errorf("supplier %s: no rule for %s", c.Name, f)
			}
		}
		if err := mapping.Validate(c.Fields); err != nil {
			return fmt.Errorf("supplier %s: %w", c.Name, err)
		}
	}
	return nil
}

// LoadVocabulary reads the amenity vocabulary file.
func LoadVocabulary(path string) (domain.Vocabulary, error) {
	var v domain.Vocabulary
	if err := decodeFile(path, &v); err != nil {
		return domain.Vocabulary{}, err
	}
	return v, nil
}

// LoadMerge reads the merge strategy file. Unknown strategy names are not
// rejected here; the engine replaces them with first_non_null.
func LoadMerge(path string) (domain.MergeConfig, error) {
	var c domain.MergeConfig
	if err := decodeFile(path, &c); err != nil {
		return domain.MergeConfig{}, err
	}
	if err := ValidateMerge(c); err != nil {
		return domain.MergeConfig{}, &domain.ConfigError{Path: path, Err: err}
	}
	return c, nil
}

func ValidateMerge(c domain.MergeConfig) error {
	paths := make([]string, 0, len(c.Fields))
	for p := range c.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			return errors.New("merge rule with empty path")
		}
		r := c.Fields[p]
		if r.Strategy != merge.MergeList && (r.Key != "" || len(r.SubfieldStrategies) > 0) {
			return fmt.Errorf("field %q: key and subfield_strategies need strategy %s", p, merge.MergeList)
		}
	}
	return nil
}

func decodeFile(path string, dst any) error {
	b, err := readFile(path)
	if err != nil {
		return err
	}
	if isYAML(path) {
		err = yaml.Unmarshal(b, dst)
	} else {
		err = json.Unmarshal(b, dst)
	}
	if err != nil {
		return &domain.ConfigError{Path: path, Err: err}
	}
	return nil
}
