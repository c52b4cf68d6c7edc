package analyzer

import (
	"github.com/yildizm/mclogsum/internal/common"
	"github.com/yildizm/mclogsum/internal/extractor"
)

var defaultEngine = NewEngine(defaultRules...)

// Classify ranks a log against the built-in catalogue
func Classify(log string) Result {
	return defaultEngine.Classify(log)
}

// Pipeline runs field extraction and classification over the same log
type Pipeline struct {
	extractor *extractor.Extractor
	engine    *Engine
}

// NewPipeline creates a pipeline. Nil parts fall back to the defaults.
func NewPipeline(x *extractor.Extractor, e *Engine) *Pipeline {
	if x == nil {
		x = extractor.New(extractor.Options{})
	}
	if e == nil {
		e = defaultEngine
	}
	return &Pipeline{extractor: x, engine: e}
}

// Engine returns the classifier used by the pipeline
func (p *Pipeline) Engine() *Engine {
	return p.engine
}

// Extract runs field extraction only
func (p *Pipeline) Extract(log string) common.Fields {
	return p.extractor.Extract(log)
}

// Diagnose extracts fields, classifies the log and assembles a report
func (p *Pipeline) Diagnose(log string) *common.Report {
	return common.NewReport(p.extractor.Extract(log), log, p.engine.Classify(log))
}
