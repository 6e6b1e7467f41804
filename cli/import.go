// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/auth"
	"github.com/danielhkuo/scan-for-a-prize/db"
	"github.com/danielhkuo/scan-for-a-prize/models"
	"github.com/danielhkuo/scan-for-a-prize/qr"
)

// PropertyFile is the import-properties input:
//
//	properties:
//	  - address: 12 Harbor Way
//	    prizeTitle: $50 gift card
//	    prizeDescription: Drawn monthly
type PropertyFile struct {
	Properties []PropertyEntry `yaml:"properties"`
}

type PropertyEntry struct {
	Address          string `yaml:"address"`
	PrizeTitle       string `yaml:"prizeTitle"`
	PrizeDescription string `yaml:"prizeDescription"`
}

// Imported is one created property with its one-time visible code.
type Imported struct {
	Property models.Property
	Code     string
}

// NewImportPropertiesCommand creates the import-properties command.
func NewImportPropertiesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-properties <file.yaml>",
		Short: "Create unclaimed prospecting properties from a YAML file",
		Long: `Create one unclaimed property per entry. Each gets a fresh slug and
verification code, printed once so the codes can be mailed to realtors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			file, err := parsePropertyFile(raw)
			if err != nil {
				return err
			}

			conn, err := openDB(rootOpts.Config)
			if err != nil {
				return err
			}
			defer db.Close(conn)

			imported, err := importProperties(conn, file)
			if err != nil {
				return err
			}
			return printImported(cmd.OutOrStdout(), rootOpts.Config.BaseURL, imported)
		},
	}
}

func parsePropertyFile(raw []byte) (PropertyFile, error) {
	var file PropertyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return PropertyFile{}, fmt.Errorf("invalid property file: %w", err)
	}
	if len(file.Properties) == 0 {
		return PropertyFile{}, fmt.Errorf("property file lists no properties")
	}
	for i, p := range file.Properties {
		if strings.TrimSpace(p.Address) == "" {
			return PropertyFile{}, fmt.Errorf("property %d: address is required", i+1)
		}
	}
	return file, nil
}

// importProperties inserts every entry or none.
func importProperties(conn *gorm.DB, file PropertyFile) ([]Imported, error) {
	out := make([]Imported, 0, len(file.Properties))
	err := conn.Transaction(func(tx *gorm.DB) error {
		for _, entry := range file.Properties {
			slug, err := auth.GenerateSlug()
			if err != nil {
				return err
			}
			code, err := auth.GenerateVerificationCode()
			if err != nil {
				return err
			}

			p := models.Property{
				ID:               auth.NewID(),
				Slug:             slug,
				Address:          strings.TrimSpace(entry.Address),
				VerificationCode: code,
				Status:           models.StatusUnclaimed,
				CreatedByMaster:  true,
			}
			if t := strings.TrimSpace(entry.PrizeTitle); t != "" {
				p.PrizeTitle = &t
			}
			if d := strings.TrimSpace(entry.PrizeDescription); d != "" {
				p.PrizeDescription = &d
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("failed to create %q: %w", p.Address, err)
			}
			out = append(out, Imported{Property: p, Code: code})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func printImported(w io.Writer, baseURL string, imported []Imported) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDRESS\tCODE\tURL")
	for _, im := range imported {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", im.Property.Address, im.Code, qr.LandingURL(baseURL, im.Property.Slug))
	}
	return tw.Flush()
}
