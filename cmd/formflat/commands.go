package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"

	"formflat/internal/api"
	"formflat/internal/attachments"
	"formflat/internal/config"
	"formflat/internal/diagnostic"
	"formflat/internal/flatten"
	"formflat/internal/form"
	"formflat/internal/kobo"
	"formflat/internal/ledger"
	"formflat/internal/logger"
	"formflat/internal/submit"
	"formflat/internal/workbook"
)

const shutdownTimeout = 10 * time.Second

func newFlagSet(name string, stdout io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("formflat "+name, flag.ContinueOnError)
	fs.SetOutput(stdout)

	return fs
}

func newClient(cfg *config.Config) (*kobo.Client, error) {
	if err := cfg.RequireKobo(); err != nil {
		return nil, err
	}

	return kobo.NewClient(kobo.ClientConfig{
		ServerURL:     cfg.Kobo.ServerURL,
		SubmissionURL: cfg.Kobo.SubmissionURL,
		Token:         cfg.Kobo.APIToken,
		Timeout:       cfg.Kobo.Timeout(),
		Logger:        logger.Get("kobo"),
	})
}

// loadForm reads the form from path, or fetches it when path is empty. raw
// is only set for fetched forms.
func loadForm(ctx context.Context, cfg *config.Config, path string) (asset *form.Asset, raw []byte, err error) {
	if path != "" {
		asset, err = form.LoadFile(path)
		return asset, nil, err
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	raw, asset, err = client.FetchAsset(ctx, cfg.Kobo.FormUID)

	return asset, raw, err
}

func formUID(cfg *config.Config, asset *form.Asset) string {
	if cfg.Kobo.FormUID != "" {
		return cfg.Kobo.FormUID
	}

	return asset.UID
}

func logDiagnostics(log zerolog.Logger, d diagnostic.Diagnostics) {
	for _, x := range d.Errors {
		log.Error().Str("code", x.Code).Msg(x.String())
	}

	for _, x := range d.Warnings {
		log.Warn().Str("code", x.Code).Msg(x.String())
	}

	for _, x := range d.Infos {
		log.Debug().Str("code", x.Code).Msg(x.String())
	}
}

func runFetch(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("fetch", stdout)
	out := fs.String("out", cfg.Template.SchemaSnapshot, "snapshot path")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *out == "" {
		return fmt.Errorf("no snapshot path (-out or template.schema_snapshot)")
	}

	asset, raw, err := loadForm(ctx, cfg, "")
	if err != nil {
		return err
	}

	if err := form.WriteSnapshot(*out, raw); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Saved %s (%q, %d nodes, %d choices) to %s\n",
		asset.UID, asset.Name, len(asset.Content.Survey), len(asset.Content.Choices), *out)

	return nil
}

func runTemplate(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("template", stdout)
	formPath := fs.String("form", "", "form definition file (JSON or YAML); fetched when empty")
	out := fs.String("out", cfg.Template.Output, "workbook path")
	rows := fs.Int("dropdown-rows", cfg.Template.DropdownRows, "last row covered by dropdowns")

	if err := fs.Parse(args); err != nil {
		return err
	}

	asset, raw, err := loadForm(ctx, cfg, *formPath)
	if err != nil {
		return err
	}

	log := logger.Get("template")

	if raw != nil && cfg.Template.SchemaSnapshot != "" {
		if err := form.WriteSnapshot(cfg.Template.SchemaSnapshot, raw); err != nil {
			return err
		}

		log.Info().Str("path", cfg.Template.SchemaSnapshot).Msg("Saved form snapshot")
	}

	res := flatten.New(cfg.Flatten.Options()).Flatten(asset.Content)
	logDiagnostics(log, res.Diagnostics)

	if err := workbook.Write(*out, res, workbook.Options{DropdownRows: *rows}); err != nil {
		return err
	}

	headers := res.Schema.Headers
	preview := headers
	if len(preview) > 12 {
		preview = preview[:12]
	}

	fmt.Fprintf(stdout, "Excel template written to %s\n", *out)
	fmt.Fprintf(stdout, "Template columns (%d): %s", len(headers), strings.Join(preview, ", "))

	if len(headers) > len(preview) {
		fmt.Fprint(stdout, " ...")
	}

	fmt.Fprintln(stdout)

	if n := len(res.Schema.ChoiceColumns()); n > 0 {
		fmt.Fprintf(stdout, "Dropdowns added for %d choice columns\n", n)
	}

	return nil
}

func runInspect(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("inspect", stdout)
	formPath := fs.String("form", "", "form definition file (JSON or YAML); fetched when empty")
	dump := fs.Bool("dump", false, "dump the field records")

	if err := fs.Parse(args); err != nil {
		return err
	}

	asset, _, err := loadForm(ctx, cfg, *formPath)
	if err != nil {
		return err
	}

	res := flatten.New(cfg.Flatten.Options()).Flatten(asset.Content)

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HEADER\tKIND\tPATH\tTYPE\tLABEL")

	for _, c := range res.Schema.Columns {
		var path, typ, label string
		if c.Field != nil {
			path, typ, label = c.Field.PathString(), c.Field.LogicalType.String(), c.Field.Label
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Header, c.Kind, path, typ, label)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	for _, d := range res.Diagnostics.All() {
		fmt.Fprintf(stdout, "%s: %s\n", d.Severity, d)
	}

	if *dump {
		cs := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cs.Fdump(stdout, res.Fields)
	}

	return nil
}

func runSubmit(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("submit", stdout)
	formPath := fs.String("form", "", "form definition file (JSON or YAML); fetched when empty")
	input := fs.String("input", cfg.Submit.Input, "filled template workbook")
	sheet := fs.String("sheet", cfg.Submit.Sheet, "sheet holding the rows")
	force := fs.Bool("force", cfg.Submit.Force, "resubmit rows already in the ledger")
	workers := fs.Int("workers", cfg.Submit.Workers, "concurrent submissions")
	dryRun := fs.Bool("dry-run", false, "print the XML instances instead of posting them")

	if err := fs.Parse(args); err != nil {
		return err
	}

	asset, _, err := loadForm(ctx, cfg, *formPath)
	if err != nil {
		return err
	}

	uid := formUID(cfg, asset)
	if uid == "" {
		return fmt.Errorf("form uid unknown; set kobo.form_uid")
	}

	res := flatten.New(cfg.Flatten.Options()).Flatten(asset.Content)

	data, err := workbook.ReadSheet(*input, *sheet)
	if err != nil {
		return err
	}

	diags := res.Diagnostics
	diags.Merge(submit.CheckHeaders(res.Schema, data.Headers))
	logDiagnostics(logger.Get("submit"), diags)

	if err := diags.Error(); err != nil {
		return fmt.Errorf("sheet %s of %s does not match the form: %w", data.Name, *input, err)
	}

	rows := data.Rows
	builder := submit.NewBuilder(res, uid, cfg.Submit.MergeGroups)

	var locator *attachments.Locator
	if cfg.Submit.AttachmentsDir != "" && cfg.Submit.AttachmentKeyColumn != "" {
		locator = attachments.NewLocator(cfg.Submit.AttachmentsDir, cfg.Submit.AttachmentExtensions)
	}

	runnerCfg := submit.RunnerConfig{
		FormUID:             uid,
		Workers:             *workers,
		Force:               *force,
		AttachmentKeyColumn: cfg.Submit.AttachmentKeyColumn,
		AttachmentField:     cfg.Submit.AttachmentField,
		Logger:              logger.Get("submit"),
	}

	if *dryRun {
		preview := submit.NewRunner(runnerCfg, builder, nil, nil, locator)

		for _, row := range rows {
			env, att, err := preview.Preview(row)
			if err != nil {
				return fmt.Errorf("row %d: %w", row.Number, err)
			}

			if att != nil {
				fmt.Fprintf(stdout, "<!-- row %d, attachment %s -->\n%s\n", row.Number, att.Path, env.XML)
			} else {
				fmt.Fprintf(stdout, "<!-- row %d -->\n%s\n", row.Number, env.XML)
			}
		}

		return nil
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	var store submit.Ledger

	if cfg.Submit.LedgerPath != "" {
		s, err := ledger.Open(cfg.Submit.LedgerPath)
		if err != nil {
			return err
		}
		defer s.Close()

		store = s
	}

	runner := submit.NewRunner(runnerCfg, builder, client, store, locator)

	report, err := runner.Run(ctx, rows)
	if report != nil {
		fmt.Fprintf(stdout, "Submitted %d, skipped %d, failed %d of %d rows\n",
			report.Submitted, report.Skipped, report.Failed, len(rows))

		for _, r := range report.Results {
			switch {
			case r.Err != nil:
				fmt.Fprintf(stdout, "  %v\n", r.Err)
			case r.DuplicateOf > 0:
				fmt.Fprintf(stdout, "  row %d: same content as row %d\n", r.Row, r.DuplicateOf)
			}
		}
	}

	if err != nil {
		return err
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d rows failed", report.Failed)
	}

	return nil
}

func runLedger(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("ledger", stdout)
	uid := fs.String("uid", cfg.Kobo.FormUID, "form uid")
	path := fs.String("path", cfg.Submit.LedgerPath, "ledger database")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *uid == "" {
		return fmt.Errorf("form uid unknown; pass -uid or set kobo.form_uid")
	}

	if *path == "" {
		return fmt.Errorf("no ledger path (-path or submit.ledger_path)")
	}

	store, err := ledger.Open(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(ctx, *uid)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintf(stdout, "No submissions recorded for %s\n", *uid)
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBMITTED\tROW\tINSTANCE\tATTACHMENT\tFINGERPRINT")

	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			e.SubmittedAt.UTC().Format(time.RFC3339), e.Row, e.InstanceID, e.Attachment, e.Fingerprint)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%d submissions recorded for %s\n", len(entries), *uid)

	return nil
}

func runServe(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := newFlagSet("serve", stdout)
	addr := fs.String("addr", cfg.Server.Addr(), "listen address")

	if err := fs.Parse(args); err != nil {
		return err
	}

	scfg := api.DefaultServerConfig()
	scfg.Addr = *addr

	srv := api.NewServer(scfg, flatten.New(cfg.Flatten.Options()), logger.Get("api"))

	return srv.Run(ctx, shutdownTimeout)
}
