package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"ology/internal/chart"
	"ology/internal/model"
)

// printer renders command results for a terminal.
type printer struct {
	out       io.Writer
	useColors bool
}

// resolveColors honors NO_COLOR and dumb terminals, then falls back to the tty check of fatih/color.
func resolveColors() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return !color.NoColor
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, useColors: resolveColors()}
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

// TopDomains prints one page of the listing under a page heading.
func (p *printer) TopDomains(list []model.TopDomain, page int) error {
	fmt.Fprintf(p.out, "page: %d\n", max(page, 1))
	rows := make([][]string, len(list))
	for i, d := range list {
		rows[i] = []string{d.Domain, strconv.FormatInt(d.Count, 10)}
	}
	t := newTable(p.out)
	t.Header([]string{"domain", "count"})
	if err := t.Bulk(rows); err != nil {
		return err
	}
	return t.Render()
}

// Chart prints the renderer choice, the fit summary and the points of every series side by side.
func (p *printer) Chart(c chart.Chart) error {
	fmt.Fprintf(p.out, "renderer: %s\n", c.Renderer)
	switch {
	case c.Fit != nil:
		fmt.Fprintf(p.out, "fit: %s  m=%g  b=%g\n", p.correlation(c.Fit.R), c.Fit.M, c.Fit.B)
	case c.Error != "":
		fmt.Fprintf(p.out, "fit: %s\n", p.paint(color.FgYellow, c.Error))
	}
	if len(c.Series) == 0 {
		return nil
	}

	header := []string{"date"}
	for _, s := range c.Series {
		header = append(header, s.Name)
	}
	base := c.Series[0].Data
	rows := make([][]string, len(base))
	for i, pt := range base {
		row := []string{time.Unix(int64(pt.X), 0).UTC().Format("2006-01-02")}
		for _, s := range c.Series {
			row = append(row, formatCount(s.Data[i].Y))
		}
		rows[i] = row
	}
	t := newTable(p.out)
	t.Header(header)
	if err := t.Bulk(rows); err != nil {
		return err
	}
	return t.Render()
}

func (p *printer) correlation(r float64) string {
	s := fmt.Sprintf("r=%.4f", r)
	switch {
	case r > 0:
		return p.paint(color.FgGreen, s)
	case r < 0:
		return p.paint(color.FgRed, s)
	default:
		return s
	}
}

func (p *printer) paint(attr color.Attribute, s string) string {
	if !p.useColors {
		return s
	}
	return color.New(attr).Sprint(s)
}

func formatCount(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
