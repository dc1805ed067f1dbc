// Package batch renders every invoice of a record set and stores the
// documents, one pass, in source order.
//
// A failing invoice is reported and skipped; the remaining invoices are still
// processed unless the runner was built WithStopOnError.
package batch

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"invoices/internal/logger"
	"invoices/internal/render"
	"invoices/pkg/models"
)

// Stage names the step at which an invoice failed.
type Stage string

const (
	StageContext  Stage = "context"
	StageFileName Stage = "filename"
	StageRender   Stage = "render"
	StageWrite    Stage = "write"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusWarning = "warning" // written, but replaced an earlier document of this run
	StatusError   = "error"
)

// Result is the outcome for one invoice.
type Result struct {
	InvoiceID int
	FileName  string
	Path      string
	Bytes     int
	Status    string
	Stage     Stage // set when Status is StatusError
	Err       error
}

// Summary collects the results of a run in invoice order.
type Summary struct {
	Results []Result

	// Aborted is set when the run stopped early on an error.
	Aborted bool
}

// Count returns the number of results with the given status.
func (s Summary) Count(status string) int {
	n := 0
	for _, res := range s.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Failures returns the failed results.
func (s Summary) Failures() []Result {
	var failed []Result
	for _, res := range s.Results {
		if res.Status == StatusError {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins the errors of all failed invoices, or returns nil.
func (s Summary) Err() error {
	var errs []error
	for _, res := range s.Failures() {
		errs = append(errs, fmt.Errorf("invoice %d (%s): %w", res.InvoiceID, res.Stage, res.Err))
	}
	return errors.Join(errs...)
}

// Runner renders and writes invoices.
type Runner struct {
	renderer    render.Renderer
	writer      Writer
	ext         string
	stopOnError bool
	dryRun      bool
	log         zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithExtension sets the file extension of written documents.
func WithExtension(ext string) Option {
	return func(r *Runner) {
		r.ext = ext
	}
}

// WithStopOnError stops the run at the first failing invoice.
func WithStopOnError(stop bool) Option {
	return func(r *Runner) {
		r.stopOnError = stop
	}
}

// WithDryRun renders every invoice but writes nothing.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// New creates a Runner. Documents get the extension "tex" unless set.
func New(renderer render.Renderer, writer Writer, opts ...Option) *Runner {
	r := &Runner{
		renderer: renderer,
		writer:   writer,
		ext:      "tex",
		log:      logger.WithComponent("batch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes invoices in order.
func (r *Runner) Run(invoices []*models.Invoice) Summary {
	summary := Summary{Results: make([]Result, 0, len(invoices))}
	written := map[string]int{}

	r.log.Info().
		Int("invoices", len(invoices)).
		Bool("dry_run", r.dryRun).
		Bool("stop_on_error", r.stopOnError).
		Msg("Starting batch")

	for _, inv := range invoices {
		res := r.process(inv)

		if res.Status == StatusSuccess {
			if prev, ok := written[res.FileName]; ok {
				res.Status = StatusWarning
				r.log.Warn().
					Int("invoice_id", res.InvoiceID).
					Int("replaced_invoice_id", prev).
					Str("file", res.FileName).
					Msg("Document name collision, earlier document overwritten")
			}
			written[res.FileName] = res.InvoiceID
		}

		summary.Results = append(summary.Results, res)
		if res.Status == StatusError && r.stopOnError {
			summary.Aborted = true
			r.log.Error().Int("invoice_id", res.InvoiceID).Msg("Stopping batch after failure")
			break
		}
	}

	r.log.Info().
		Int("succeeded", summary.Count(StatusSuccess)+summary.Count(StatusWarning)).
		Int("failed", summary.Count(StatusError)).
		Bool("aborted", summary.Aborted).
		Msg("Batch finished")

	return summary
}

func (r *Runner) process(inv *models.Invoice) Result {
	log := logger.WithInvoice("batch", inv.ID())
	res := Result{InvoiceID: inv.ID()}

	fail := func(stage Stage, err error) Result {
		res.Status = StatusError
		res.Stage = stage
		res.Err = err
		log.Error().Err(err).Str("stage", string(stage)).Msg("Invoice failed")
		return res
	}

	ctx, err := render.NewContext(inv)
	if err != nil {
		return fail(StageContext, err)
	}

	name, err := render.FileName(ctx, r.ext)
	if err != nil {
		return fail(StageFileName, err)
	}
	res.FileName = name

	doc, err := r.renderer.Render(ctx)
	if err != nil {
		return fail(StageRender, err)
	}
	res.Bytes = len(doc)

	if r.dryRun {
		log.Info().Str("file", name).Int("bytes", len(doc)).Msg("Rendered (dry run)")
		res.Status = StatusSuccess
		return res
	}

	path, err := r.writer.Write(name, doc)
	res.Path = path
	if err != nil {
		return fail(StageWrite, err)
	}

	log.Info().
		Str("file", path).
		Int("bytes", len(doc)).
		Str("total_with_vat", ctx.TotalWithVAT.StringFixed(2)).
		Msg("Invoice written")

	res.Status = StatusSuccess
	return res
}
