package lab

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoKey is returned by Get for a key the configuration does not have.
var ErrNoKey = errors.New("no such configuration key")

// Get looks up a value for shell scripts and workflows. Besides top-level
// YAML keys it understands:
//
//	gradedsrc          every graded file of every part
//	makefile_name      the makefile name, with the hidden prefix applied
//	num_parts          the number of parts
//	parts <n> <key>    a key of the n-th part, counting from zero
//
// Lists render space separated; nested objects render as YAML.
func (c *Config) Get(keys ...string) (string, error) {
	if len(keys) == 0 {
		return "", fmt.Errorf("%w: none given", ErrNoKey)
	}
	switch keys[0] {
	case "gradedsrc":
		var files []string
		for _, p := range c.Parts {
			files = append(files, p.GradedFiles()...)
		}
		return strings.Join(files, " "), nil
	case "makefile_name":
		return c.Makefile(), nil
	case "num_parts":
		return strconv.Itoa(len(c.Parts)), nil
	}

	tree, err := c.tree()
	if err != nil {
		return "", err
	}
	if keys[0] == "parts" && len(keys) >= 3 {
		n, err := strconv.Atoi(keys[1])
		if err != nil || n < 0 || n >= len(c.Parts) {
			return "", fmt.Errorf("%w: parts %s (have %d parts)", ErrNoKey, keys[1], len(c.Parts))
		}
		part, _ := tree["parts"].([]any)[n].(map[string]any)
		v, ok := part[keys[2]]
		if !ok {
			return "", fmt.Errorf("%w: parts %d %s", ErrNoKey, n, keys[2])
		}
		return render(v)
	}
	v, ok := tree[keys[0]]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoKey, keys[0])
	}
	return render(v)
}

func (c *Config) tree() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal lab config: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("unmarshal lab config: %w", err)
	}
	return tree, nil
}

func render(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool, int, float64:
		return fmt.Sprint(v), nil
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return renderYAML(v)
			}
			items = append(items, s)
		}
		return strings.Join(items, " "), nil
	}
	return renderYAML(v)
}

func renderYAML(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("render value: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
