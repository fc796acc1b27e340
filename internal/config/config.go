// Package config loads formflat settings from defaults, an optional TOML
// file, .env files and FORMFLAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"formflat/internal/common"
	"formflat/internal/flatten"
	"formflat/internal/form"
	"formflat/internal/label"
)

// EnvPrefix prefixes every environment override, e.g. FORMFLAT_KOBO_API_TOKEN.
const EnvPrefix = "FORMFLAT"

// Config holds all configuration for formflat.
type Config struct {
	Kobo     KoboConfig
	Flatten  FlattenConfig
	Template TemplateConfig
	Submit   SubmitConfig
	Server   ServerConfig
	Log      LogConfig
}

// KoboConfig holds the server endpoints and credentials.
type KoboConfig struct {
	ServerURL      string // KPI base URL, asset API
	SubmissionURL  string // KoBoCAT base URL, /submission endpoint
	APIToken       string
	FormUID        string
	TimeoutSeconds int
}

// Timeout returns the per-request timeout.
func (k KoboConfig) Timeout() time.Duration {
	return time.Duration(k.TimeoutSeconds) * time.Second
}

// FlattenConfig holds the flattening options shared by every command.
type FlattenConfig struct {
	PreferredLocales     []string
	ExcludedTypes        []string
	ExtraColumns         []string
	ReservedColumns      []string
	CatalogExcludedTypes []string
}

// Options converts the section into a pipeline configuration.
func (f FlattenConfig) Options() flatten.Config {
	return flatten.Config{
		PreferredLocales:     common.NonNil(f.PreferredLocales),
		ExcludedTypes:        logicalTypes(f.ExcludedTypes),
		ExtraColumns:         common.NonNil(f.ExtraColumns),
		ReservedColumns:      common.NonNil(f.ReservedColumns),
		CatalogExcludedTypes: logicalTypes(f.CatalogExcludedTypes),
	}
}

// TemplateConfig holds template workbook settings.
type TemplateConfig struct {
	Output         string // workbook path
	DropdownRows   int    // last row covered by dropdown validation
	SchemaSnapshot string // raw asset JSON path; empty disables the snapshot
}

// SubmitConfig holds settings for posting filled rows.
type SubmitConfig struct {
	Input                string
	Sheet                string
	AttachmentsDir       string
	AttachmentKeyColumn  string // header whose value names the attachment folder
	AttachmentField      string // header receiving the attachment filename; empty picks the first binary column
	AttachmentExtensions []string
	Workers              int
	MergeGroups          bool
	LedgerPath           string
	Force                bool // resubmit rows already recorded in the ledger
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Host string
	Port int
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads the configuration. When file is empty, formflat.toml is looked
// up in the working directory, /etc/formflat/ and $HOME/.formflat/; a missing
// file is not an error. A .env file in the working directory is applied to
// the environment first.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("formflat")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/formflat/")
		v.AddConfigPath("$HOME/.formflat/")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Kobo: KoboConfig{
			ServerURL:      strings.TrimRight(v.GetString("kobo.server_url"), "/"),
			SubmissionURL:  strings.TrimRight(v.GetString("kobo.submission_url"), "/"),
			APIToken:       v.GetString("kobo.api_token"),
			FormUID:        v.GetString("kobo.form_uid"),
			TimeoutSeconds: v.GetInt("kobo.timeout_seconds"),
		},
		Flatten: FlattenConfig{
			PreferredLocales:     v.GetStringSlice("flatten.preferred_locales"),
			ExcludedTypes:        v.GetStringSlice("flatten.excluded_types"),
			ExtraColumns:         v.GetStringSlice("flatten.extra_columns"),
			ReservedColumns:      v.GetStringSlice("flatten.reserved_columns"),
			CatalogExcludedTypes: v.GetStringSlice("flatten.catalog_excluded_types"),
		},
		Template: TemplateConfig{
			Output:         v.GetString("template.output"),
			DropdownRows:   v.GetInt("template.dropdown_rows"),
			SchemaSnapshot: v.GetString("template.schema_snapshot"),
		},
		Submit: SubmitConfig{
			Input:                v.GetString("submit.input"),
			Sheet:                v.GetString("submit.sheet"),
			AttachmentsDir:       v.GetString("submit.attachments_dir"),
			AttachmentKeyColumn:  v.GetString("submit.attachment_key_column"),
			AttachmentField:      v.GetString("submit.attachment_field"),
			AttachmentExtensions: v.GetStringSlice("submit.attachment_extensions"),
			Workers:              v.GetInt("submit.workers"),
			MergeGroups:          v.GetBool("submit.merge_groups"),
			LedgerPath:           v.GetString("submit.ledger_path"),
			Force:                v.GetBool("submit.force"),
		},
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("kobo.server_url", "https://kf.kobotoolbox.org")
	v.SetDefault("kobo.submission_url", "https://kc.kobotoolbox.org")
	v.SetDefault("kobo.api_token", "")
	v.SetDefault("kobo.form_uid", "")
	v.SetDefault("kobo.timeout_seconds", 60)

	v.SetDefault("flatten.preferred_locales", label.DefaultPreferredLocales)
	v.SetDefault("flatten.excluded_types", []string{"note", "calculated"})
	v.SetDefault("flatten.extra_columns", []string{"Comments"})
	v.SetDefault("flatten.reserved_columns", []string{"start", "end"})
	v.SetDefault("flatten.catalog_excluded_types", []string{"note"})

	v.SetDefault("template.output", "kobo_import_template.xlsx")
	v.SetDefault("template.dropdown_rows", 1000)
	v.SetDefault("template.schema_snapshot", "kobo_schema.json")

	v.SetDefault("submit.input", "ready_to_upload.xlsx")
	v.SetDefault("submit.sheet", "template")
	v.SetDefault("submit.attachments_dir", "images/image_inside")
	v.SetDefault("submit.attachment_key_column", "")
	v.SetDefault("submit.attachment_field", "")
	v.SetDefault("submit.attachment_extensions",
		[]string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"})
	v.SetDefault("submit.workers", 4)
	v.SetDefault("submit.merge_groups", false)
	v.SetDefault("submit.ledger_path", "formflat.db")
	v.SetDefault("submit.force", false)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error

	if c.Kobo.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("kobo.timeout_seconds must be positive, got %d", c.Kobo.TimeoutSeconds))
	}

	if c.Template.DropdownRows < 2 {
		errs = append(errs, fmt.Errorf("template.dropdown_rows must be at least 2, got %d", c.Template.DropdownRows))
	}

	if c.Submit.Workers <= 0 {
		errs = append(errs, fmt.Errorf("submit.workers must be positive, got %d", c.Submit.Workers))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port))
	}

	for _, key := range []struct {
		name  string
		types []string
	}{
		{"flatten.excluded_types", c.Flatten.ExcludedTypes},
		{"flatten.catalog_excluded_types", c.Flatten.CatalogExcludedTypes},
	} {
		for _, t := range key.types {
			if !form.LogicalType(t).Valid() {
				errs = append(errs, fmt.Errorf("%s: unknown logical type %q", key.name, t))
			}
		}
	}

	return errors.Join(errs...)
}

// RequireKobo reports missing credentials for commands that talk to the server.
func (c *Config) RequireKobo() error {
	var errs []error

	if c.Kobo.APIToken == "" {
		errs = append(errs, errors.New("kobo.api_token is not set (FORMFLAT_KOBO_API_TOKEN)"))
	}

	if c.Kobo.FormUID == "" {
		errs = append(errs, errors.New("kobo.form_uid is not set (FORMFLAT_KOBO_FORM_UID)"))
	}

	return errors.Join(errs...)
}

func logicalTypes(names []string) []form.LogicalType {
	out := make([]form.LogicalType, 0, len(names))
	for _, n := range names {
		out = append(out, form.LogicalType(strings.TrimSpace(n)))
	}

	return out
}
