package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/andresuchdata/restock-engine/internal/domain"
	"github.com/andresuchdata/restock-engine/internal/export"
	"github.com/andresuchdata/restock-engine/internal/source"
	"github.com/rs/zerolog/log"
)

// publish writes tables to out. An .xlsx target gets one sheet per table;
// a CSV target gets the first table, and every further non-empty table goes
// to a sibling file named after its sheet.
func (s *session) publish(ctx context.Context, out string, tables ...export.Table) error {
	loc, err := source.Parse(out)
	if err != nil {
		return err
	}

	localDir := filepath.Dir(loc.Path)
	if loc.IsRemote() {
		tmp, err := os.MkdirTemp("", "restock-out-")
		if err != nil {
			return fmt.Errorf("failed to create temp dir: %w", err)
		}
		defer os.RemoveAll(tmp)
		localDir = tmp
	}
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return fmt.Errorf("failed creating directory %s: %w", localDir, err)
	}

	base := path.Base(loc.Path)
	primary := filepath.Join(localDir, base)

	if export.IsXLSX(base) {
		if err := export.WriteWorkbook(primary, tables...); err != nil {
			return err
		}
		return s.ship(ctx, primary, out)
	}

	if err := export.Write(primary, tables[0]); err != nil {
		return err
	}
	if err := s.ship(ctx, primary, out); err != nil {
		return err
	}

	for _, t := range tables[1:] {
		if len(t.Rows) == 0 {
			continue
		}
		name := siblingName(base, t.Sheet)
		local := filepath.Join(localDir, name)
		if err := export.Write(local, t); err != nil {
			return err
		}
		if err := s.ship(ctx, local, siblingName(out, t.Sheet)); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) ship(ctx context.Context, local, uri string) error {
	if err := s.resolver.Publish(ctx, local, uri); err != nil {
		return fmt.Errorf("failed to publish %s: %w", uri, err)
	}
	log.Info().Str("out", uri).Msg("restock: results written")
	return nil
}

// siblingName turns "dir/result.csv" and "Cross Check" into "dir/result_cross_check.csv".
func siblingName(name, sheet string) string {
	ext := path.Ext(name)
	suffix := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(sheet), " ", "_"))
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}

func printLines(w io.Writer, lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

func printRejected(w io.Writer, issues []domain.ValidationIssue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "rejected %d record field(s):\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(w, "  %s: %s\n", issue.Path, issue.Message)
	}
}

// printTable prints the header and at most top rows; top <= 0 prints all.
func printTable(w io.Writer, t export.Table, top int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Header, "\t"))

	rows := t.Rows
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(rows) < len(t.Rows) {
		fmt.Fprintf(w, "... %d more rows\n", len(t.Rows)-len(rows))
	}
	return nil
}
