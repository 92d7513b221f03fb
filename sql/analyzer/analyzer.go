package analyzer

import (
	"os"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-distsql.v0/sql"
	errors "gopkg.in/src-d/go-errors.v1"
)

const debugAnalyzerKey = "DEBUG_ANALYZER"

const maxAnalysisIterations = 1000

// ErrMaxAnalysisIters is thrown when the analysis iterations are exceeded.
var ErrMaxAnalysisIters = errors.NewKind("exceeded max analysis iterations (%d)")

// Builder provides an easy way to generate Analyzers with custom rules and
// options.
type Builder struct {
	preAnalyzeRules     []Rule
	postAnalyzeRules    []Rule
	preValidationRules  []Rule
	postValidationRules []Rule
	catalog             *sql.Catalog
	debug               bool
	parallelism         int
	maxMemoryGroups     int
	spillDir            string
}

// NewBuilder creates a new Builder from a specific catalog.
func NewBuilder(c *sql.Catalog) *Builder {
	return &Builder{catalog: c}
}

// WithDebug activates debug on the Analyzer.
func (ab *Builder) WithDebug() *Builder {
	ab.debug = true
	return ab
}

// WithParallelism sets the parallelism level on the analyzer.
func (ab *Builder) WithParallelism(parallelism int) *Builder {
	ab.parallelism = parallelism
	return ab
}

// WithMaxMemoryGroups bounds the number of groups aggregations hold in
// memory before spilling to disk. Zero disables spilling.
func (ab *Builder) WithMaxMemoryGroups(groups int) *Builder {
	ab.maxMemoryGroups = groups
	return ab
}

// WithSpillDir sets the directory aggregation spills are created under.
func (ab *Builder) WithSpillDir(dir string) *Builder {
	ab.spillDir = dir
	return ab
}

// AddPreAnalyzeRule adds a new rule to the analyzer before the standard
// analyzer rules.
func (ab *Builder) AddPreAnalyzeRule(name string, fn RuleFunc) *Builder {
	ab.preAnalyzeRules = append(ab.preAnalyzeRules, Rule{name, fn})
	return ab
}

// AddPostAnalyzeRule adds a new rule to the analyzer after the standard
// analyzer rules.
func (ab *Builder) AddPostAnalyzeRule(name string, fn RuleFunc) *Builder {
	ab.postAnalyzeRules = append(ab.postAnalyzeRules, Rule{name, fn})
	return ab
}

// AddPreValidationRule adds a new rule to the analyzer before the standard
// validation rules.
func (ab *Builder) AddPreValidationRule(name string, fn RuleFunc) *Builder {
	ab.preValidationRules = append(ab.preValidationRules, Rule{name, fn})
	return ab
}

// AddPostValidationRule adds a new rule to the analyzer after the standard
// validation rules.
func (ab *Builder) AddPostValidationRule(name string, fn RuleFunc) *Builder {
	ab.postValidationRules = append(ab.postValidationRules, Rule{name, fn})
	return ab
}

// Build creates a new Analyzer from the builder parameters.
func (ab *Builder) Build() *Analyzer {
	_, debug := os.LookupEnv(debugAnalyzerKey)
	batches := []*Batch{
		{
			Desc:       "pre-analyzer",
			Iterations: maxAnalysisIterations,
			Rules:      ab.preAnalyzeRules,
		},
		{
			Desc:       "default-rules",
			Iterations: maxAnalysisIterations,
			Rules:      DefaultRules,
		},
		{
			Desc:       "post-analyzer",
			Iterations: maxAnalysisIterations,
			Rules:      ab.postAnalyzeRules,
		},
		{
			Desc:       "pre-validation",
			Iterations: 1,
			Rules:      ab.preValidationRules,
		},
		{
			Desc:       "validation",
			Iterations: 1,
			Rules:      DefaultValidationRules,
		},
		{
			Desc:       "post-validation",
			Iterations: 1,
			Rules:      ab.postValidationRules,
		},
		{
			Desc:       "after-all",
			Iterations: 1,
			Rules:      OnceAfterAll,
		},
	}

	return &Analyzer{
		Debug:           debug || ab.debug,
		Batches:         batches,
		Catalog:         ab.catalog,
		Parallelism:     ab.parallelism,
		MaxMemoryGroups: ab.maxMemoryGroups,
		SpillDir:        ab.spillDir,
	}
}

// Analyzer analyzes nodes of the execution plan and applies rules and
// validations to them.
type Analyzer struct {
	// Debug specifies whether to log debug messages during analysis.
	Debug bool
	// contextStack keeps track of the context the analyzer is in, for
	// debug logging.
	contextStack []string
	// Batches of rules to apply, in order.
	Batches []*Batch
	// Catalog of functions.
	Catalog *sql.Catalog
	// Parallelism is the number of tasks distributed table scans are
	// split into. Zero or one leaves plans serial.
	Parallelism int
	// MaxMemoryGroups bounds the number of groups aggregations hold in
	// memory before spilling to disk. Zero disables spilling.
	MaxMemoryGroups int
	// SpillDir is the directory aggregation spills are created under.
	SpillDir string
}

// NewDefault creates a default Analyzer instance with all default Rules
// and configuration.
func NewDefault(c *sql.Catalog) *Analyzer {
	return NewBuilder(c).Build()
}

// Log prints an INFO message to stdout with the given message and args if
// the analyzer is in debug mode.
func (a *Analyzer) Log(msg string, args ...interface{}) {
	if a != nil && a.Debug {
		if len(a.contextStack) > 0 {
			ctx := strings.Join(a.contextStack, "/")
			logrus.Infof("%s: "+msg, append([]interface{}{ctx}, args...)...)
		} else {
			logrus.Infof(msg, args...)
		}
	}
}

// PushDebugContext pushes the given context string onto the context
// stack, to use when logging debug messages.
func (a *Analyzer) PushDebugContext(msg string) {
	if a != nil && a.Debug {
		a.contextStack = append(a.contextStack, msg)
	}
}

// PopDebugContext pops a context message off the context stack.
func (a *Analyzer) PopDebugContext() {
	if a != nil && len(a.contextStack) > 0 {
		a.contextStack = a.contextStack[:len(a.contextStack)-1]
	}
}

// Analyze applies the transformation rules to the node given. In the case
// of an error, the last successfully transformed node is returned along
// with the error.
func (a *Analyzer) Analyze(ctx *sql.Context, n sql.Node) (sql.Node, error) {
	span, ctx := ctx.Span("analyze", opentracing.Tags{
		"plan": n.String(),
	})
	defer span.Finish()

	prev := n
	var err error
	for _, batch := range a.Batches {
		a.PushDebugContext(batch.Desc)
		prev, err = batch.Eval(ctx, a, prev)
		if ErrMaxAnalysisIters.Is(err) {
			a.Log(err.Error())
			a.PopDebugContext()
			continue
		} else if err != nil {
			a.PopDebugContext()
			return prev, err
		}
		a.PopDebugContext()
	}

	span.SetTag("resolved", prev.Resolved())
	return prev, err
}
