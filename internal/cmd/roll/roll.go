// Package roll parses roll command flags and rolls an expression locally.
package roll

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	entrypoint "github.com/louisbranch/dicetower/internal/platform/cmd"
	apperrors "github.com/louisbranch/dicetower/internal/platform/errors"
	"github.com/louisbranch/dicetower/internal/platform/errors/i18n"
	"github.com/louisbranch/dicetower/internal/services/dice/api/wire"
	"github.com/louisbranch/dicetower/internal/services/dice/service"
)

// Config holds roll command configuration.
type Config struct {
	Mode       string `env:"DICETOWER_ROLL_MODE" envDefault:"none"`
	Locale     string `env:"DICETOWER_LOCALE"`
	JSON       bool   `env:"DICETOWER_ROLL_JSON"`
	Expression string
}

// ParseConfig parses environment and flags into a Config. Remaining
// arguments are joined into the expression so "2d6 + 3" works unquoted.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "roll mode: none, advantage, or disadvantage")
	fs.StringVar(&cfg.Locale, "lang", cfg.Locale, "locale for error messages (en-US, pt-BR)")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "print the roll record as JSON")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Expression = strings.Join(fs.Args(), " ")
	return cfg, nil
}

// Run rolls cfg.Expression with the crypto source and prints the result.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if strings.TrimSpace(cfg.Expression) == "" {
		return errors.New("expression is required")
	}

	record, err := service.New(nil, nil).Roll(ctx, cfg.Expression, cfg.Mode)
	if err != nil {
		return localize(errOut, cfg.Locale, err)
	}

	view := wire.FromRecord(record)
	if cfg.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	_, err = fmt.Fprintln(out, wire.AuditLine(view))
	return err
}

// localizedError carries a catalog message for the user while keeping the
// domain error in the chain.
type localizedError struct {
	message string
	err     error
}

func (e *localizedError) Error() string { return e.message }

func (e *localizedError) Unwrap() error { return e.err }

// localize renders err in the requested locale and writes per-field details
// to w.
func localize(w io.Writer, locale string, err error) error {
	domainErr, ok := apperrors.As(err)
	if !ok {
		return err
	}
	for _, violation := range domainErr.Violations {
		fmt.Fprintf(w, "  %s: %s\n", violation.Field, violation.Description)
	}
	catalog := i18n.GetCatalog(locale)
	return &localizedError{
		message: catalog.Format(string(domainErr.Code), domainErr.Metadata),
		err:     err,
	}
}
