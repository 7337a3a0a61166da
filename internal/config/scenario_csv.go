package config

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/rpgo/portfolio-survival/internal/domain"
	"gopkg.in/yaml.v3"
)

// Scenario files are two-column CSVs of dotted configuration keys and
// values, e.g. "household.expenses.basic,60000". Lists are stored as JSON.

// ExportScenarioCSV writes every configuration setting as a key,value row,
// sorted by key.
func ExportScenarioCSV(w io.Writer, config *domain.Configuration) error {
	tree, err := toTree(config)
	if err != nil {
		return err
	}

	var rows [][]string
	if err := flatten(tree, "", &rows); err != nil {
		return err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"key", "value"}); err != nil {
		return fmt.Errorf("failed to write scenario header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write scenario rows: %w", err)
	}
	return nil
}

// ScenarioImport reports how a scenario file was applied.
type ScenarioImport struct {
	Config  *domain.Configuration
	Applied []string
	// Skipped lists keys that do not exist in the base configuration.
	Skipped []string
}

// ImportScenarioCSV applies a key,value CSV on top of base and returns the
// updated copy. Only keys already present in base are updated, and each
// value is converted to the type of the value it replaces.
func ImportScenarioCSV(r io.Reader, base *domain.Configuration) (*ScenarioImport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("scenario CSV is empty")
	}
	keyCol, valCol := -1, -1
	for i, h := range records[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "key":
			keyCol = i
		case "value":
			valCol = i
		}
	}
	if keyCol < 0 || valCol < 0 {
		return nil, fmt.Errorf("scenario CSV must have columns: key,value")
	}

	tree, err := toTree(base)
	if err != nil {
		return nil, err
	}

	result := &ScenarioImport{}
	for _, rec := range records[1:] {
		if keyCol >= len(rec) {
			continue
		}
		key := strings.TrimSpace(rec[keyCol])
		if key == "" {
			continue
		}
		value := ""
		if valCol < len(rec) {
			value = rec[valCol]
		}
		ok, err := setExisting(tree, key, value)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		if ok {
			result.Applied = append(result.Applied, key)
		} else {
			result.Skipped = append(result.Skipped, key)
		}
	}

	data, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scenario: %w", err)
	}
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to apply scenario: %w", err)
	}
	result.Config = &config
	return result, nil
}

// toTree converts a configuration to generic YAML maps. Decimal amounts
// become strings.
func toTree(config *domain.Configuration) (map[string]any, error) {
	if config == nil {
		return nil, fmt.Errorf("no configuration provided")
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	tree := make(map[string]any)
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return tree, nil
}

func flatten(node map[string]any, prefix string, rows *[][]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(val, key, rows); err != nil {
				return err
			}
		case []any:
			data, err := json.Marshal(val)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", key, err)
			}
			*rows = append(*rows, []string{key, string(data)})
		case nil:
			*rows = append(*rows, []string{key, ""})
		default:
			*rows = append(*rows, []string{key, fmt.Sprint(val)})
		}
	}
	return nil
}

func setExisting(tree map[string]any, dotted, value string) (bool, error) {
	parts := strings.Split(dotted, ".")
	parent := tree
	for _, p := range parts[:len(parts)-1] {
		next, ok := parent[p].(map[string]any)
		if !ok {
			return false, nil
		}
		parent = next
	}
	leaf := parts[len(parts)-1]
	current, exists := parent[leaf]
	if !exists {
		return false, nil
	}

	if leaf == "windfalls" {
		list, err := parseWindfalls(value)
		if err != nil {
			return false, err
		}
		parent[leaf] = list
		return true, nil
	}

	converted, err := castLike(current, value)
	if err != nil {
		return false, err
	}
	parent[leaf] = converted
	return true, nil
}

func castLike(current any, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch current.(type) {
	case bool:
		switch strings.ToLower(value) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		}
		return false, nil
	case int:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("want a whole number, got %q", value)
		}
		return int(f), nil
	case float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("want a number, got %q", value)
		}
		return f, nil
	case []any:
		var list []any
		if value == "" {
			return []any{}, nil
		}
		if err := json.Unmarshal([]byte(value), &list); err != nil {
			return nil, fmt.Errorf("want a JSON list: %w", err)
		}
		return list, nil
	}
	return value, nil
}

// parseWindfalls reads a JSON list of {label, amount, age} objects. Entries
// with neither a label nor a positive amount are dropped.
func parseWindfalls(value string) ([]any, error) {
	out := []any{}
	if strings.TrimSpace(value) == "" {
		return out, nil
	}
	var raw []map[string]any
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, fmt.Errorf("windfalls must be a JSON list of objects: %w", err)
	}
	for _, item := range raw {
		label := strings.TrimSpace(fmt.Sprint(orDefault(item["label"], "")))
		amount, err := toFloat(item["amount"])
		if err != nil {
			return nil, fmt.Errorf("windfall %q amount: %w", label, err)
		}
		age, err := toFloat(item["age"])
		if err != nil {
			return nil, fmt.Errorf("windfall %q age: %w", label, err)
		}
		if label == "" && amount <= 0 {
			continue
		}
		out = append(out, map[string]any{
			"label":  label,
			"amount": strconv.FormatFloat(amount, 'f', -1, 64),
			"age":    int(age),
		})
	}
	return out, nil
}

func orDefault(v, def any) any {
	if v == nil {
		return def
	}
	return v
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		return f, nil
	}
	return 0, fmt.Errorf("unexpected value %v", v)
}
