package models

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// StringList accepts either a single string or a sequence of strings in YAML.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*l = StringList(list)
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
	}
}

// FileMapping maps source patterns to one destination file.
type FileMapping struct {
	Src  StringList `yaml:"src" json:"src"`
	Dest string     `yaml:"dest" json:"dest"`
}

// Target is one unit of work: the sources joined into Dest by a pipeline.
type Target struct {
	Name    string   // Configured target name
	Src     []string // Source patterns, expanded by the executor
	Dest    string   // Destination file path
	Options Options  // Merged task and target options
}

// Validate checks that the target has all required fields.
func (t *Target) Validate() error {
	if t.Name == "" {
		return errors.New("target name is required")
	}
	if t.Dest == "" {
		return fmt.Errorf("target %q: dest is required", t.Name)
	}
	if len(t.Src) == 0 {
		return fmt.Errorf("target %q: src is required", t.Name)
	}
	return nil
}

// Label identifies the target in logs.
func (t *Target) Label() string {
	return t.Name + " -> " + t.Dest
}
