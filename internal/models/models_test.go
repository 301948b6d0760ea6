package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestResolve(t *testing.T) {
	assert.Equal(t, "op", Resolve("op", "shared", "default"))
	assert.Equal(t, "shared", Resolve("", "shared", "default"))
	assert.Equal(t, "default", Resolve("", "", "default"))
	assert.Equal(t, "", Resolve())
}

func TestOptionsSteps(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want Steps
	}{
		{
			name: "nothing configured",
			opts: Options{Tag: "T", PathTest: "dev/"},
			want: Steps{},
		},
		{
			name: "shared values fill the steps",
			opts: Options{
				Tag:      "TAG1",
				PathTest: "dev/",
				Pick:     &PickOptions{},
				Replace:  &ReplaceOptions{Replacement: "x"},
				Remove:   &RemoveOptions{},
			},
			want: Steps{
				Pick:    &PickOptions{Tag: "TAG1"},
				Replace: &ReplaceOptions{Tag: "TAG1", Replacement: "x", PathTest: "dev/"},
				Remove:  &RemoveOptions{Tag: "TAG1", PathTest: "dev/"},
			},
		},
		{
			name: "step values win",
			opts: Options{
				Tag:      "TAG1",
				PathTest: "dev/",
				Pick:     &PickOptions{Tag: "P", AllowErrors: true},
				Remove:   &RemoveOptions{Tag: "R", PathTest: "*.js"},
			},
			want: Steps{
				Pick:   &PickOptions{Tag: "P", AllowErrors: true},
				Remove: &RemoveOptions{Tag: "R", PathTest: "*.js"},
			},
		},
		{
			name: "no tag anywhere leaves the default to the engine",
			opts: Options{Replace: &ReplaceOptions{}},
			want: Steps{Replace: &ReplaceOptions{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.Steps())
		})
	}
}

func TestOptionsMerge(t *testing.T) {
	base := Options{
		Tag:     "BASE",
		Pick:    &PickOptions{Tag: "P"},
		Replace: &ReplaceOptions{Replacement: "old"},
	}
	override := Options{
		PathTest: "dev/",
		Replace:  &ReplaceOptions{Replacement: "new"},
		Remove:   &RemoveOptions{},
	}

	merged := base.Merge(override)
	assert.Equal(t, "BASE", merged.Tag)
	assert.Equal(t, "dev/", merged.PathTest)
	assert.Equal(t, "P", merged.Pick.Tag)
	assert.Equal(t, "new", merged.Replace.Replacement)
	assert.NotNil(t, merged.Remove)

	// The receiver is not modified.
	assert.Equal(t, "old", base.Replace.Replacement)
	assert.Nil(t, base.Remove)
	assert.False(t, merged.IsEmpty())
	assert.True(t, Options{Tag: "x"}.IsEmpty())
}

func TestStepsTags(t *testing.T) {
	s := Options{
		Tag:     "A",
		Pick:    &PickOptions{},
		Replace: &ReplaceOptions{Tag: "B"},
		Remove:  &RemoveOptions{},
	}.Steps()
	assert.Equal(t, []string{"A", "B"}, s.Tags("SPEC"))

	s = Options{Remove: &RemoveOptions{}}.Steps()
	assert.Equal(t, []string{"SPEC"}, s.Tags("SPEC"))
}

func TestFileMappingYAML(t *testing.T) {
	var mappings []FileMapping
	input := `
- src: a.html
  dest: out/a.html
- src: [b.html, "!c.html"]
  dest: out/b.html
`
	require.NoError(t, yaml.Unmarshal([]byte(input), &mappings))
	require.Len(t, mappings, 2)
	assert.Equal(t, StringList{"a.html"}, mappings[0].Src)
	assert.Equal(t, StringList{"b.html", "!c.html"}, mappings[1].Src)

	err := yaml.Unmarshal([]byte("src: {a: b}\ndest: x\n"), &FileMapping{})
	assert.Error(t, err)
}

func TestOptionsYAML(t *testing.T) {
	input := `
tag: TAG1
path_test: src/dev/
pick_tag:
  allow_errors: true
remove_tag: {}
`
	var opts Options
	require.NoError(t, yaml.Unmarshal([]byte(input), &opts))
	assert.Equal(t, "TAG1", opts.Tag)
	require.NotNil(t, opts.Pick)
	assert.True(t, opts.Pick.AllowErrors)
	assert.Nil(t, opts.Replace)
	assert.NotNil(t, opts.Remove)
}

func TestTargetValidate(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr bool
	}{
		{"valid", Target{Name: "web", Src: []string{"a"}, Dest: "b"}, false},
		{"missing name", Target{Src: []string{"a"}, Dest: "b"}, true},
		{"missing dest", Target{Name: "web", Src: []string{"a"}}, true},
		{"missing src", Target{Name: "web", Dest: "b"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	target := Target{Name: "web", Dest: "dist/index.html"}
	assert.Equal(t, "web -> dist/index.html", target.Label())
}

func TestBuildResultAdd(t *testing.T) {
	var r BuildResult
	for _, status := range []string{StatusWritten, StatusWritten, StatusUnchanged, StatusSkipped, StatusNotFound, StatusFailed} {
		r.Add(TargetResult{Status: status})
	}

	assert.Equal(t, 6, r.TotalTargets)
	assert.Equal(t, 2, r.Written)
	assert.Equal(t, 1, r.Unchanged)
	assert.Equal(t, 1, r.Skipped)
	assert.Equal(t, 1, r.NotFound)
	assert.Equal(t, 1, r.Failed)
	assert.Len(t, r.FailedTargets, 1)
	assert.False(t, r.Succeeded())
	assert.Equal(t, 2, r.StatusBreakdown()[StatusWritten])
	assert.True(t, r.FailedTargets[0].Failed())
}
