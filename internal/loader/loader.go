// Package loader is the rule specification loader collaborator spec.md
// §6 describes by interface only: it turns the on-disk rule file (JSON,
// the canonical encoding, or YAML, an admissible alternate encoding) into
// the []urlrule.Rule the Rule Engine is built from, assigning each rule
// its definition index in file order.
package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/edgecomet/ruleengine/internal/common/yamlutil"
	"github.com/edgecomet/ruleengine/pkg/urlrule"
)

// ruleSpec and conditionSpec mirror the external wire shape from spec.md
// §6 before its string fields are resolved into dense Part/Operator
// ordinals.
type ruleSpec struct {
	Name       string          `json:"name" yaml:"name"`
	Priority   int             `json:"priority" yaml:"priority"`
	Conditions []conditionSpec `json:"conditions" yaml:"conditions"`
	Result     string          `json:"result" yaml:"result"`
}

type conditionSpec struct {
	Part     string `json:"part" yaml:"part"`
	Operator string `json:"operator" yaml:"operator"`
	Value    string `json:"value" yaml:"value"`
	Negated  bool   `json:"negated" yaml:"negated"`
}

// LoadFile reads a rule specification from path. YAML is used for
// ".yaml"/".yml" extensions; every other extension is decoded as JSON,
// the canonical encoding.
func LoadFile(path string) ([]urlrule.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: opening rule file: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return LoadYAML(f)
	}
	return LoadJSON(f)
}

// LoadJSON decodes the canonical JSON array encoding of the rule
// specification.
func LoadJSON(r io.Reader) ([]urlrule.Rule, error) {
	var specs []ruleSpec
	if err := json.NewDecoder(r).Decode(&specs); err != nil {
		return nil, fmt.Errorf("loader: decoding JSON rule spec: %w", err)
	}
	return resolve(specs)
}

// LoadYAML decodes the admissible YAML encoding of the rule
// specification, rejecting unknown fields so a typo'd key fails loudly
// at load time rather than being silently ignored.
func LoadYAML(r io.Reader) ([]urlrule.Rule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("loader: reading YAML rule spec: %w", err)
	}

	var specs []ruleSpec
	if err := yamlutil.UnmarshalStrict(data, &specs); err != nil {
		return nil, fmt.Errorf("loader: decoding YAML rule spec: %w", err)
	}
	return resolve(specs)
}

// resolve turns the wire-shaped specs into Rule values, assigning
// DefinitionIndex in file order and rejecting rules with zero
// conditions (the spec.md §9 open question: this loader treats an empty
// conditions list as a malformed rule specification rather than a rule
// that vacuously matches every URL).
func resolve(specs []ruleSpec) ([]urlrule.Rule, error) {
	rules := make([]urlrule.Rule, len(specs))
	for i, spec := range specs {
		if len(spec.Conditions) == 0 {
			return nil, fmt.Errorf("loader: rule %q (index %d) has zero conditions", spec.Name, i)
		}

		conditions := make([]urlrule.Condition, len(spec.Conditions))
		for j, cs := range spec.Conditions {
			part, err := urlrule.ParsePart(cs.Part)
			if err != nil {
				return nil, fmt.Errorf("loader: rule %q condition %d: %w", spec.Name, j, err)
			}
			operator, err := urlrule.ParseOperator(cs.Operator)
			if err != nil {
				return nil, fmt.Errorf("loader: rule %q condition %d: %w", spec.Name, j, err)
			}
			conditions[j] = urlrule.Condition{
				Part:     part,
				Operator: operator,
				Value:    cs.Value,
				Negated:  cs.Negated,
			}
		}

		rules[i] = urlrule.Rule{
			Name:            spec.Name,
			Priority:        spec.Priority,
			Conditions:      conditions,
			Result:          spec.Result,
			DefinitionIndex: i,
		}
	}
	return rules, nil
}
