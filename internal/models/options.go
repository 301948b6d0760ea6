package models

// PickOptions configures the pick step of a pipeline.
//
// YAML structure:
//
//	pick_tag:
//	  tag: "DOC"           # falls back to options.tag, then the default tag
//	  allow_errors: true   # a missing tag is a warning instead of a failure
type PickOptions struct {
	Tag         string `yaml:"tag,omitempty" json:"tag,omitempty"`
	AllowErrors bool   `yaml:"allow_errors,omitempty" json:"allow_errors,omitempty"`
}

// ReplaceOptions configures the replace step of a pipeline.
type ReplaceOptions struct {
	Tag         string `yaml:"tag,omitempty" json:"tag,omitempty"`
	Replacement string `yaml:"replacement,omitempty" json:"replacement,omitempty"`
	PathTest    string `yaml:"path_test,omitempty" json:"path_test,omitempty"`
}

// RemoveOptions configures the remove step of a pipeline.
type RemoveOptions struct {
	Tag      string `yaml:"tag,omitempty" json:"tag,omitempty"`
	PathTest string `yaml:"path_test,omitempty" json:"path_test,omitempty"`
}

// Options holds the shared tag and path test plus the configured steps.
// A nil step is not run.
type Options struct {
	Tag      string          `yaml:"tag,omitempty" json:"tag,omitempty"`
	PathTest string          `yaml:"path_test,omitempty" json:"path_test,omitempty"`
	Pick     *PickOptions    `yaml:"pick_tag,omitempty" json:"pick_tag,omitempty"`
	Replace  *ReplaceOptions `yaml:"replace_tag,omitempty" json:"replace_tag,omitempty"`
	Remove   *RemoveOptions  `yaml:"remove_tag,omitempty" json:"remove_tag,omitempty"`
}

// Resolve returns the first non-empty value, so callers list the most
// specific layer first.
func Resolve(layers ...string) string {
	for _, v := range layers {
		if v != "" {
			return v
		}
	}
	return ""
}

// Merge layers override on top of o. Shared fields are overridden when set;
// a step configured in override replaces the whole step of o.
func (o Options) Merge(override Options) Options {
	merged := o
	merged.Tag = Resolve(override.Tag, o.Tag)
	merged.PathTest = Resolve(override.PathTest, o.PathTest)
	if override.Pick != nil {
		merged.Pick = override.Pick
	}
	if override.Replace != nil {
		merged.Replace = override.Replace
	}
	if override.Remove != nil {
		merged.Remove = override.Remove
	}
	return merged
}

// IsEmpty returns true if no step is configured.
func (o Options) IsEmpty() bool {
	return o.Pick == nil && o.Replace == nil && o.Remove == nil
}

// Steps is a pipeline with the shared tag and path test folded into each
// configured step. An empty Tag means the engine's default tag.
type Steps struct {
	Pick    *PickOptions
	Replace *ReplaceOptions
	Remove  *RemoveOptions
}

// Steps resolves the effective options of every configured step.
func (o Options) Steps() Steps {
	var s Steps
	if o.Pick != nil {
		s.Pick = &PickOptions{
			Tag:         Resolve(o.Pick.Tag, o.Tag),
			AllowErrors: o.Pick.AllowErrors,
		}
	}
	if o.Replace != nil {
		s.Replace = &ReplaceOptions{
			Tag:         Resolve(o.Replace.Tag, o.Tag),
			Replacement: o.Replace.Replacement,
			PathTest:    Resolve(o.Replace.PathTest, o.PathTest),
		}
	}
	if o.Remove != nil {
		s.Remove = &RemoveOptions{
			Tag:      Resolve(o.Remove.Tag, o.Tag),
			PathTest: Resolve(o.Remove.PathTest, o.PathTest),
		}
	}
	return s
}

// Tags lists the distinct tags used by the steps, in pipeline order.
func (s Steps) Tags(defaultTag string) []string {
	var tags []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = Resolve(name, defaultTag)
		if !seen[name] {
			seen[name] = true
			tags = append(tags, name)
		}
	}
	if s.Pick != nil {
		add(s.Pick.Tag)
	}
	if s.Replace != nil {
		add(s.Replace.Tag)
	}
	if s.Remove != nil {
		add(s.Remove.Tag)
	}
	return tags
}
