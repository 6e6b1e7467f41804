// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package export renders lead lists for download.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danielhkuo/scan-for-a-prize/models"
)

// Header is the fixed CSV column order.
var Header = []string{"Name", "Email", "Phone", "Property", "Prize", "Date Submitted"}

// WriteCSV writes leads as CSV with every field quoted. Null phones and
// prizes render as empty fields.
func WriteCSV(w io.Writer, leads []models.LeadView) error {
	if err := writeRow(w, Header); err != nil {
		return err
	}
	for _, l := range leads {
		row := []string{
			l.Name,
			l.Email,
			deref(l.Phone),
			l.PropertyAddress,
			deref(l.PrizeTitle),
			l.CreatedAt.UTC().Format(time.DateOnly),
		}
		if err := writeRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

// Filename is the download name for an export taken at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("leads-%s.csv", now.UTC().Format(time.DateOnly))
}

func writeRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ",")+"\n")
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
