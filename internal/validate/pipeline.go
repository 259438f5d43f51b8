// Package validate runs the archive validation pipeline: extraction into an
// isolated workspace, per-file classification and analysis, an aggregate
// analysis over the Python sources, and the publish/reject decision.
package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/model-validator/backend/internal/archive"
	"github.com/model-validator/backend/internal/inspect"
	"github.com/model-validator/backend/internal/llm"
	"github.com/model-validator/backend/internal/models"
	"github.com/model-validator/backend/internal/workspace"
)

// PythonSuffix marks the qualifying source files a publishable model must
// contain.
const PythonSuffix = ".py"

// Fixed verdict wording.
const (
	successMessage      = "Model validation passed"
	failurePrefix       = "Validation failed: "
	msgNoPythonFiles    = "No Python files found in archive"
	msgRejectedByAI     = "AI analysis flagged the code as placeholder or test code"
	msgNotZipArchive    = "File is not a valid ZIP archive"
	msgUnsafeArchive    = "Archive rejected by extraction safety checks"
	errorRecordPrefix   = "Error analyzing file: "
	pythonJoinSeparator = "\n\n"
)

// Analyzer is the analysis capability the pipeline depends on. The returned
// string is always displayable text; backend failures are folded into it.
type Analyzer interface {
	AnalyzeCode(ctx context.Context, code string, meta llm.RequestContext) string
}

// Request is one validation submission.
type Request struct {
	FileName          string
	Data              []byte
	Description       string
	SetupInstructions string
}

// Pipeline orchestrates one validation run per call. Safe for concurrent use.
type Pipeline struct {
	analyzer      Analyzer
	workspaces    *workspace.Manager
	limits        archive.Limits
	maxConcurrent int
	log           *slog.Logger
}

// NewPipeline creates a validation pipeline.
func NewPipeline(analyzer Analyzer, workspaces *workspace.Manager, limits archive.Limits, maxConcurrent int, logger *slog.Logger) *Pipeline {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		analyzer:      analyzer,
		workspaces:    workspaces,
		limits:        limits,
		maxConcurrent: maxConcurrent,
		log:           logger,
	}
}

// Rejection builds a structured failure verdict without running the
// pipeline, for submissions rejected before extraction.
func Rejection(reason string) *models.ValidationVerdict {
	return &models.ValidationVerdict{
		IsValid:       false,
		Message:       failurePrefix + reason,
		FilesAnalyzed: []models.FileAnalysis{},
	}
}

// Run executes the full pipeline for one request. Malformed or unsafe
// archives produce a structured failure verdict, not an error; an error
// return means an unexpected internal failure. The workspace is removed on
// every exit path.
func (p *Pipeline) Run(ctx context.Context, req Request) (*models.ValidationVerdict, error) {
	ws, err := p.workspaces.Create()
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	defer ws.Cleanup()

	paths, err := archive.Extract(req.Data, ws.Path(), p.limits)
	if err != nil {
		switch {
		case errors.Is(err, archive.ErrInvalidArchive):
			p.log.Info("validate.invalid_archive", "file", req.FileName, "error", err)
			return Rejection(msgNotZipArchive), nil
		case errors.Is(err, archive.ErrUnsafeArchive):
			p.log.Warn("validate.unsafe_archive", "file", req.FileName, "error", err)
			return Rejection(msgUnsafeArchive), nil
		default:
			return nil, fmt.Errorf("extracting archive: %w", err)
		}
	}

	meta := llm.RequestContext{
		Description:       req.Description,
		SetupInstructions: req.SetupInstructions,
	}

	files := p.analyzeFiles(ctx, paths, meta)
	verdict := p.decide(ctx, files, meta)

	p.log.Info("validate.done",
		"file", req.FileName,
		"files_analyzed", len(verdict.FilesAnalyzed),
		"is_valid", verdict.IsValid,
	)

	return verdict, nil
}

// fileResult pairs the reportable record with the full decoded text, which
// feeds the aggregate analysis untruncated.
type fileResult struct {
	record models.FileAnalysis
	text   string
}

// analyzeFiles classifies, reads and (where eligible) analyzes each
// extracted file. Per-file analyses are independent, so they run on a
// bounded worker pool; results keep archive order.
func (p *Pipeline) analyzeFiles(ctx context.Context, paths []string, meta llm.RequestContext) []fileResult {
	results := make([]fileResult, len(paths))
	sem := make(chan struct{}, p.maxConcurrent)
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = p.analyzeFile(ctx, path, meta)
		}(i, path)
	}

	wg.Wait()
	return results
}

// analyzeFile produces the record for one extracted file. Failures here are
// per-file: they become error records and never abort the pipeline.
func (p *Pipeline) analyzeFile(ctx context.Context, path string, meta llm.RequestContext) fileResult {
	name := filepath.Base(path)

	cls, err := inspect.Classify(path)
	if err != nil {
		return errorResult(name, err)
	}

	record := models.FileAnalysis{
		FileName: name,
		FileType: cls.MediaType,
		FileSize: cls.Size,
	}

	if cls.Kind != inspect.KindText {
		record.Content = inspect.Placeholder(cls.Kind)
		return fileResult{record: record}
	}

	text, err := inspect.ReadText(path)
	if err != nil {
		return errorResult(name, err)
	}

	record.Content = inspect.Preview(text)
	if cls.AnalysisEligible() {
		record.AIAnalysis = p.analyzer.AnalyzeCode(ctx, text, meta)
	}

	return fileResult{record: record, text: text}
}

func errorResult(name string, err error) fileResult {
	return fileResult{record: models.FileAnalysis{
		FileName: name,
		Error:    errorRecordPrefix + err.Error(),
	}}
}

// decide applies the validation policy: a submission is valid when it
// contains at least one Python file and the consolidated analysis does not
// carry the reject marker. Only the absence of the reject marker is checked;
// a reply with neither marker counts as accepted.
func (p *Pipeline) decide(ctx context.Context, files []fileResult, meta llm.RequestContext) *models.ValidationVerdict {
	records := make([]models.FileAnalysis, 0, len(files))
	hasPython := false
	var pythonSources []string

	for _, f := range files {
		records = append(records, f.record)
		if strings.HasSuffix(f.record.FileName, PythonSuffix) {
			hasPython = true
			if f.text != "" {
				pythonSources = append(pythonSources, f.text)
			}
		}
	}

	var messages []string
	if !hasPython {
		messages = append(messages, msgNoPythonFiles)
	}

	var consolidated *string
	if combined := strings.Join(pythonSources, pythonJoinSeparator); combined != "" {
		analysis := p.analyzer.AnalyzeCode(ctx, combined, meta)
		consolidated = &analysis
		if strings.Contains(analysis, llm.RejectMarker) {
			messages = append(messages, msgRejectedByAI)
		}
	}

	verdict := &models.ValidationVerdict{
		IsValid:       hasPython && len(messages) == 0,
		FilesAnalyzed: records,
		AIAnalysis:    consolidated,
	}
	if verdict.IsValid {
		verdict.Message = successMessage
	} else {
		verdict.Message = failurePrefix + strings.Join(messages, "; ")
	}

	return verdict
}
