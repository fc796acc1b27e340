package submit

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"formflat/internal/attachments"
	"formflat/internal/form"
	"formflat/internal/kobo"
	"formflat/internal/ledger"
	"formflat/internal/workbook"
)

// Submitter posts one instance.
type Submitter interface {
	Submit(ctx context.Context, s kobo.Submission) error
}

// Ledger remembers accepted rows.
type Ledger interface {
	Seen(ctx context.Context, formUID, fingerprint string) (bool, error)
	Record(ctx context.Context, e ledger.Entry) error
}

// Outcome is what happened to one row.
type Outcome int

const (
	OutcomeSubmitted Outcome = iota // accepted by the server
	OutcomeSkipped                  // already in the ledger, or repeats an earlier row
	OutcomeFailed
)

// String returns the outcome name used in logs and reports.
func (o Outcome) String() string {
	switch o {
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// RowResult reports one row.
type RowResult struct {
	Row        int
	InstanceID string
	Attachment string
	Outcome    Outcome
	// DuplicateOf is the earlier row of the same run with identical
	// content, for rows skipped as duplicates.
	DuplicateOf int
	Err         error
}

// Report summarizes a run; Results are ordered by row.
type Report struct {
	Submitted int
	Skipped   int
	Failed    int
	Results   []RowResult
}

// RunnerConfig holds configuration for a Runner.
type RunnerConfig struct {
	FormUID string
	Workers int
	// Force resubmits rows the ledger has already seen.
	Force bool
	// AttachmentKeyColumn names the header whose value selects the
	// attachment folder. Empty disables attachments.
	AttachmentKeyColumn string
	// AttachmentField names the header that receives the attachment
	// filename. Empty picks the first binary question column.
	AttachmentField string
	Logger          zerolog.Logger
}

// Runner submits rows concurrently.
type Runner struct {
	cfg         RunnerConfig
	builder     *Builder
	client      Submitter
	ledger      Ledger
	locator     *attachments.Locator
	attachField string
	logger      zerolog.Logger
}

// NewRunner creates a runner. store and locator may be nil; client may be nil
// when the runner is only used for Preview.
func NewRunner(cfg RunnerConfig, builder *Builder, client Submitter, store Ledger, locator *attachments.Locator) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	r := &Runner{
		cfg:     cfg,
		builder: builder,
		client:  client,
		ledger:  store,
		locator: locator,
		logger:  cfg.Logger.With().Str("component", "submit").Str("form", cfg.FormUID).Logger(),
	}

	r.attachField = r.resolveAttachField()

	return r
}

func (r *Runner) resolveAttachField() string {
	schema := r.builder.Schema()

	if r.cfg.AttachmentField != "" {
		if rec, ok := schema.Meta(r.cfg.AttachmentField); ok && rec != nil {
			return r.cfg.AttachmentField
		}

		r.logger.Warn().
			Str("field", r.cfg.AttachmentField).
			Msg("Attachment field is not a question column; attachments will be sent without a reference")

		return ""
	}

	for _, c := range schema.Questions() {
		if c.Field.LogicalType == form.TypeBinary {
			return c.Header
		}
	}

	return ""
}

// AttachmentField returns the header that receives attachment filenames.
func (r *Runner) AttachmentField() string {
	return r.attachField
}

// Preview prepares row exactly as Run would send it: the attachment is
// looked up and its filename replaces the attachment field's value. The
// returned attachment is nil when none was found.
func (r *Runner) Preview(row workbook.Row) (*Envelope, *kobo.Attachment, error) {
	values := maps.Clone(row.Values)
	if values == nil {
		values = map[string]string{}
	}

	var att *kobo.Attachment

	if r.locator != nil && r.cfg.AttachmentKeyColumn != "" {
		path, name, ok, err := r.locator.Find(values[r.cfg.AttachmentKeyColumn])
		if err != nil {
			return nil, nil, err
		}

		if ok {
			att = &kobo.Attachment{Name: name, Path: path}

			if r.attachField != "" {
				values[r.attachField] = name
			}
		}
	}

	env, err := r.builder.BuildEnvelope(values)
	if err != nil {
		return nil, nil, err
	}

	return env, att, nil
}

// Run submits rows. Unless Force is set, a row identical to an earlier row
// of the same run is skipped, whatever the number of workers. It stops
// handing out rows when ctx is done and returns the report so far along
// with the context error.
func (r *Runner) Run(ctx context.Context, rows []workbook.Row) (*Report, error) {
	sem := semaphore.NewWeighted(int64(r.cfg.Workers))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]RowResult, 0, len(rows))
		runErr  error
		first   = make(map[string]int, len(rows))
	)

	headers := r.builder.Headers()

	for _, row := range rows {
		fp := Fingerprint(headers, row.Values)

		if !r.cfg.Force {
			if earlier, dup := first[fp]; dup {
				r.logger.Info().Int("row", row.Number).Int("duplicate_of", earlier).
					Msg("Row repeats an earlier row, skipping")

				mu.Lock()
				results = append(results, RowResult{Row: row.Number, Outcome: OutcomeSkipped, DuplicateOf: earlier})
				mu.Unlock()

				continue
			}

			first[fp] = row.Number
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			runErr = err
			break
		}

		wg.Add(1)

		go func(row workbook.Row, fp string) {
			defer wg.Done()
			defer sem.Release(1)

			res := r.submitRow(ctx, row, fp)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(row, fp)
	}

	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Row < results[j].Row })

	report := &Report{Results: results}
	for _, res := range results {
		switch res.Outcome {
		case OutcomeSubmitted:
			report.Submitted++
		case OutcomeSkipped:
			report.Skipped++
		case OutcomeFailed:
			report.Failed++
		}
	}

	r.logger.Info().
		Int("submitted", report.Submitted).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Submission run finished")

	return report, runErr
}

func (r *Runner) submitRow(ctx context.Context, row workbook.Row, fp string) RowResult {
	res := RowResult{Row: row.Number}
	log := r.logger.With().Int("row", row.Number).Logger()

	if r.ledger != nil && !r.cfg.Force {
		seen, err := r.ledger.Seen(ctx, r.cfg.FormUID, fp)
		if err != nil {
			return r.fail(log, res, err)
		}

		if seen {
			res.Outcome = OutcomeSkipped
			log.Debug().Msg("Row already submitted, skipping")

			return res
		}
	}

	env, att, err := r.Preview(row)
	if err != nil {
		return r.fail(log, res, err)
	}

	if att != nil {
		res.Attachment = att.Name
	}

	res.InstanceID = env.InstanceID
	sub := kobo.Submission{XML: env.XML, Attachment: att}

	if err := r.client.Submit(ctx, sub); err != nil {
		return r.fail(log, res, err)
	}

	if r.ledger != nil {
		if err := r.ledger.Record(ctx, ledger.Entry{
			FormUID:     r.cfg.FormUID,
			Fingerprint: fp,
			InstanceID:  env.InstanceID,
			Row:         row.Number,
			Attachment:  res.Attachment,
		}); err != nil {
			// accepted upstream; only the local record is missing
			log.Warn().Err(err).Msg("Failed to record submission in ledger")
		}
	}

	res.Outcome = OutcomeSubmitted
	log.Info().
		Str("instance_id", env.InstanceID).
		Bool("attachment", res.Attachment != "").
		Msg("Submitted row")

	return res
}

func (r *Runner) fail(log zerolog.Logger, res RowResult, err error) RowResult {
	res.Outcome = OutcomeFailed
	res.Err = fmt.Errorf("row %d: %w", res.Row, err)

	event := log.Error().Err(err)
	if errors.Is(err, kobo.ErrUnauthorized) {
		event = event.Str("hint", "check kobo.api_token")
	}

	event.Msg("Failed to submit row")

	return res
}
