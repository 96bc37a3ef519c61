package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/folio/internal/cms"
	"github.com/fyrsmithlabs/folio/internal/services"
	"github.com/fyrsmithlabs/folio/internal/storage"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load portfolio content from a YAML file",
	Long: `Load portfolio content from a YAML file into the database.

The file may contain any of: hero, case_studies, experience, core_values,
images and seo (keyed by page). Hero and SEO entries are upserted. Case
studies whose slug (given, or derived from the title) already exists are
skipped. Other lists are appended, so seed them into an empty database.

Example file:
  hero:
    headline: "Staff engineer building calm infrastructure"
  case_studies:
    - title: "Billing platform rewrite"
      technologies: [Go, PostgreSQL]
      published: true
  seo:
    home:
      title: "Jane Doe"`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

// SeedFile is the layout of a seed document.
type SeedFile struct {
	Hero        *cms.HeroInput          `yaml:"hero"`
	CaseStudies []cms.CaseStudyInput    `yaml:"case_studies"`
	Experience  []cms.ExperienceInput   `yaml:"experience"`
	CoreValues  []cms.CoreValueInput    `yaml:"core_values"`
	Images      []cms.ImageInput        `yaml:"images"`
	Seo         map[string]cms.SeoInput `yaml:"seo"`
}

type seedReport struct {
	Created int
	Skipped int
}

func runSeed(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	file, err := parseSeed(raw)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg, err := services.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer reg.Close()

	report, err := seedContent(cmd.Context(), reg.CMS(), file, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d item(s), skipped %d\n", report.Created, report.Skipped)
	return nil
}

func parseSeed(raw []byte) (SeedFile, error) {
	var file SeedFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return SeedFile{}, err
	}
	return file, nil
}

// seedContent writes file through the CMS service so the same validation
// applies as for the admin API. It stops at the first invalid item.
func seedContent(ctx context.Context, svc *cms.Service, file SeedFile, logger *zap.Logger) (seedReport, error) {
	var report seedReport

	if file.Hero != nil {
		if _, err := svc.UpdateHero(ctx, *file.Hero); err != nil {
			return report, fmt.Errorf("hero: %w", err)
		}
		report.Created++
	}
	for i, in := range file.CaseStudies {
		// Pin derived slugs so a second run finds the first run's rows.
		if in.Slug == "" {
			in.Slug = cms.Slugify(in.Title)
		}
		if _, err := svc.CreateCaseStudy(ctx, in); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				logger.Warn("case study exists, skipping", zap.String("title", in.Title))
				report.Skipped++
				continue
			}
			return report, fmt.Errorf("case_studies[%d] %q: %w", i, in.Title, err)
		}
		report.Created++
	}
	for i, in := range file.Experience {
		if _, err := svc.CreateExperience(ctx, in); err != nil {
			return report, fmt.Errorf("experience[%d] %q: %w", i, in.Company, err)
		}
		report.Created++
	}
	for i, in := range file.CoreValues {
		if _, err := svc.CreateCoreValue(ctx, in); err != nil {
			return report, fmt.Errorf("core_values[%d] %q: %w", i, in.Title, err)
		}
		report.Created++
	}
	for i, in := range file.Images {
		if _, err := svc.CreateImage(ctx, in); err != nil {
			return report, fmt.Errorf("images[%d]: %w", i, err)
		}
		report.Created++
	}
	for page, in := range file.Seo {
		if _, err := svc.UpsertSeo(ctx, page, in); err != nil {
			return report, fmt.Errorf("seo %q: %w", page, err)
		}
		report.Created++
	}
	return report, nil
}
