package executor

import (
	"fmt"

	"github.com/harrison/preproc/internal/models"
	"github.com/harrison/preproc/internal/tag"
)

// Pipeline runs the configured steps of a target against one document, in
// the order pick, replace, remove.
type Pipeline struct {
	engine *tag.Engine
}

// NewPipeline creates a Pipeline on engine. A nil engine gets the defaults.
func NewPipeline(engine *tag.Engine) *Pipeline {
	if engine == nil {
		engine = tag.NewEngine()
	}
	return &Pipeline{engine: engine}
}

// Engine returns the tag engine the pipeline runs on.
func (p *Pipeline) Engine() *tag.Engine {
	return p.engine
}

// Run applies opts to doc. srcPath is handed to the path tests of replace
// and remove. A pick that finds nothing stops the pipeline with a
// *TagNotFoundError.
func (p *Pipeline) Run(doc, srcPath string, opts models.Options) (string, error) {
	steps := opts.Steps()

	if steps.Pick != nil {
		name := p.engine.TagName(steps.Pick.Tag)
		picked, found, err := p.engine.Pick(name, doc)
		if err != nil {
			return "", fmt.Errorf("pick %s: %w", name, err)
		}
		if !found {
			return "", &TagNotFoundError{Tag: name}
		}
		doc = picked
	}

	if steps.Replace != nil {
		name := p.engine.TagName(steps.Replace.Tag)
		out, err := p.engine.Replace(name, steps.Replace.Replacement, doc, srcPath, steps.Replace.PathTest)
		if err != nil {
			return "", fmt.Errorf("replace %s: %w", name, err)
		}
		doc = out
	}

	if steps.Remove != nil {
		name := p.engine.TagName(steps.Remove.Tag)
		out, err := p.engine.Remove(name, doc, srcPath, steps.Remove.PathTest)
		if err != nil {
			return "", fmt.Errorf("remove %s: %w", name, err)
		}
		doc = out
	}

	return doc, nil
}

var defaultPipeline = NewPipeline(nil)

// Chain runs opts against doc on a default engine.
func Chain(doc, srcPath string, opts models.Options) (string, error) {
	return defaultPipeline.Run(doc, srcPath, opts)
}
