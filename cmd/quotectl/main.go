// quotectl is the operator CLI for the rental quote backend.
//
// Usage:
//
//	quotectl parse "50 chairs and 6 round tables for 3 days"
//	quotectl quote --tier A --location Dallas "50 chairs and 6 round tables"
//	quotectl pdf --run <id> --out quote.pdf
//	quotectl migrate up|status
//	quotectl token --subject ops@example.com --ttl 12h
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"rental_quote_backend/internal/parsing"
	"rental_quote_backend/internal/pdf"
	quotesrepo "rental_quote_backend/internal/quotes/repository"
	"rental_quote_backend/internal/quotes/service"
	"rental_quote_backend/internal/quotes/transport"
	"rental_quote_backend/internal/summary"
	"rental_quote_backend/platform/config"
	"rental_quote_backend/platform/db"
	"rental_quote_backend/platform/httpkit"
	"rental_quote_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "quotectl",
		Usage: "Operate the rental quote backend",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log at debug level",
			},
		},
		Commands: []*cli.Command{
			parseCommand(),
			quoteCommand(),
			pdfCommand(),
			migrateCommand(),
			tokenCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) *logger.Logger {
	if c.Bool("verbose") {
		return logger.New("development")
	}
	return logger.Discard()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// PARSE COMMAND
// =============================================================================

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Extract items and rental days from a message using the built-in catalog",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Usage: "Rental start date"},
			&cli.StringFlag{Name: "end", Usage: "Rental end date"},
		},
		Action: func(c *cli.Context) error {
			message := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(message) == "" {
				return cli.Exit("a message is required", 2)
			}

			items := parsing.DefaultCatalog().ParseItems(message)
			return printJSON(map[string]any{
				"items":     items,
				"unmatched": parsing.Unmatched(items),
				"days":      parsing.DurationDays(c.String("start"), c.String("end"), message, 1),
			})
		},
	}
}

// =============================================================================
// QUOTE COMMAND
// =============================================================================

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:      "quote",
		Usage:     "Run the quote pipeline against the configured database",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tier", Value: "C", Usage: "Customer tier (A, B, C)"},
			&cli.StringFlag{Name: "location", Usage: "Stated event location"},
			&cli.StringFlag{Name: "zip", Usage: "Event ZIP code"},
			&cli.StringFlag{Name: "start", Usage: "Rental start date"},
			&cli.StringFlag{Name: "end", Usage: "Rental end date"},
			&cli.StringFlag{Name: "language", Value: summary.DefaultLanguage, Usage: "Summary language"},
			&cli.BoolFlag{Name: "no-summary", Usage: "Skip the LLM summary"},
		},
		Action: runQuote,
	}
}

func runQuote(c *cli.Context) error {
	ctx := c.Context
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(c)

	svc, closeFn, err := newQuoteService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	if !c.Bool("no-summary") {
		sum, err := summary.New(cfg, log)
		if err != nil {
			return fmt.Errorf("init summary provider: %w", err)
		}
		if sum != nil {
			svc.SetSummarizer(sum)
		}
	}

	resp, err := svc.Run(ctx, transport.RunQuoteRequest{
		Message:      strings.Join(c.Args().Slice(), " "),
		CustomerTier: c.String("tier"),
		Location:     c.String("location"),
		Zip:          c.String("zip"),
		StartDate:    c.String("start"),
		EndDate:      c.String("end"),
		Language:     c.String("language"),
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

// =============================================================================
// PDF COMMAND
// =============================================================================

func pdfCommand() *cli.Command {
	return &cli.Command{
		Name:  "pdf",
		Usage: "Render the latest quote of a run to a PDF file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "run", Required: true, Usage: "Run ID"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path (default Quote-<run>.pdf)"},
		},
		Action: func(c *cli.Context) error {
			runID, err := uuid.Parse(c.String("run"))
			if err != nil {
				return cli.Exit("invalid run id", 2)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc, closeFn, err := newQuoteService(c.Context, cfg, newLogger(c))
			if err != nil {
				return err
			}
			defer closeFn()

			doc, err := svc.LatestDocument(c.Context, runID)
			if err != nil {
				return err
			}
			data, err := pdf.GenerateQuotePDF(pdf.QuotePDFData{RunID: runID.String(), Quote: *doc})
			if err != nil {
				return err
			}

			out := c.String("out")
			if out == "" {
				out = "Quote-" + runID.String() + ".pdf"
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
}

// =============================================================================
// MIGRATE COMMAND
// =============================================================================

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					if err := db.RunMigrations(c.Context, cfg); err != nil {
						return err
					}
					fmt.Fprintln(os.Stderr, "migrations applied")
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "List applied and pending migrations",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					statuses, err := db.MigrationStatus(c.Context, cfg)
					if err != nil {
						return err
					}
					for _, s := range statuses {
						applied := "pending"
						if !s.AppliedAt.IsZero() {
							applied = s.AppliedAt.Format(time.RFC3339)
						}
						fmt.Printf("%-6d %-40s %s\n", s.Source.Version, s.Source.Path, applied)
					}
					return nil
				},
			},
		},
	}
}

// =============================================================================
// TOKEN COMMAND
// =============================================================================

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Sign an operator bearer token for the run inspection endpoints",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Required: true, Usage: "Operator identity"},
			&cli.DurationFlag{Name: "ttl", Value: 12 * time.Hour, Usage: "Token lifetime"},
			&cli.StringFlag{Name: "secret", EnvVars: []string{"OPERATOR_JWT_SECRET"}, Usage: "Signing secret"},
		},
		Action: func(c *cli.Context) error {
			secret := c.String("secret")
			if secret == "" {
				return cli.Exit("OPERATOR_JWT_SECRET is not set", 2)
			}
			token, err := httpkit.SignOperatorToken(secret, c.String("subject"), c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func newQuoteService(ctx context.Context, cfg *config.Config, log *logger.Logger) (*service.Service, func(), error) {
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	var cache *quotesrepo.PolicyCache
	if cfg.IsRedisEnabled() {
		if cache, err = quotesrepo.NewPolicyCache(cfg); err != nil {
			log.Warn("policy cache unavailable", "error", err)
			cache = nil
		}
	}

	repo := quotesrepo.New(pool)
	svc := service.New(quotesrepo.NewCatalogStore(repo, repo, cache, log), repo, service.OptionsFromConfig(cfg), log)

	return svc, func() {
		if cache != nil {
			_ = cache.Close()
		}
		pool.Close()
	}, nil
}
