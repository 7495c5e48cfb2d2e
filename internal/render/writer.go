package render

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	htmltemplate "html/template"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/covid19trackerph/tracker/internal/contracts"
	"github.com/covid19trackerph/tracker/internal/period"
	"github.com/covid19trackerph/tracker/pkg/filewriter"
	"github.com/covid19trackerph/tracker/pkg/logger"
)

var (
	scripts = map[Kind]*template.Template{
		KindLine:      template.Must(template.New("line").Parse(lineTmpl)),
		KindArea:      template.Must(template.New("area").Parse(areaTmpl)),
		KindBar:       template.Must(template.New("bar").Parse(barTmpl)),
		KindPie:       template.Must(template.New("pie").Parse(pieTmpl)),
		KindHistogram: template.Must(template.New("histogram").Parse(histogramTmpl)),
	}
	htmlTable = htmltemplate.Must(htmltemplate.New("table").Parse(htmlTableTmpl))
)

// Writer is the default WriteFunc. For every chart request it writes
// <name>.tsv (the request table), <name>.dat (the plotted series) and
// <name>.gnuplot into Dir, and renders <name>.svg when Gnuplot is set.
// Table requests produce <name>.tsv and <name>.html.
// Every file is replaced atomically.
type Writer struct {
	Dir     string
	Gnuplot string // gnuplot binary; empty writes scripts only
	logger  *logger.Logger
}

// NewWriter creates a Writer into dir
func NewWriter(dir, gnuplot string, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.Nop()
	}
	return &Writer{Dir: dir, Gnuplot: gnuplot, logger: log}
}

// Write implements WriteFunc
func (w *Writer) Write(ctx context.Context, req Request) error {
	if err := validate(req); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	if err := writeTSV(w.path(req.Name, ".tsv"), req.Table); err != nil {
		return err
	}

	if req.Kind == KindTable {
		if err := w.writeHTML(req); err != nil {
			return err
		}
	} else if err := w.writeChart(ctx, req); err != nil {
		return err
	}

	w.logger.WithFields(map[string]interface{}{
		"name":     req.Name,
		"kind":     req.Kind,
		"rows":     req.Table.Len(),
		"duration": time.Since(start),
	}).Debug("Artifact written")
	return nil
}

func validate(req Request) error {
	switch {
	case req.Name == "" || strings.ContainsAny(req.Name, `/\`):
		return fmt.Errorf("artifact name %q: %w", req.Name, contracts.ErrInvalidArgument)
	case req.Table == nil:
		return fmt.Errorf("%s: no table: %w", req.Name, contracts.ErrInvalidArgument)
	case req.Kind == KindTable:
		return nil
	case scripts[req.Kind] == nil:
		return fmt.Errorf("%s: unknown chart kind %q: %w", req.Name, req.Kind, contracts.ErrInvalidArgument)
	case req.Table.Column(req.X) < 0:
		return fmt.Errorf("%s: no column %q: %w", req.Name, req.X, contracts.ErrInvalidArgument)
	case req.Kind != KindHistogram && req.Table.Column(req.Y) < 0:
		return fmt.Errorf("%s: no column %q: %w", req.Name, req.Y, contracts.ErrInvalidArgument)
	}
	return nil
}

func (w *Writer) path(name, ext string) string {
	return filepath.Join(w.Dir, name+ext)
}

func (w *Writer) writeChart(ctx context.Context, req Request) error {
	var data *Table
	var err error
	if req.Kind == KindHistogram {
		data, err = Spread(req.Table, req.X, req.Color, req.Options)
	} else {
		data, err = Pivot(req.Table, req.X, req.Y, req.Color, req.Options)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", req.Name, err)
	}

	dataPath := w.path(req.Name, ".dat")
	if err := writeTSV(dataPath, data); err != nil {
		return err
	}

	var script bytes.Buffer
	if err := scripts[req.Kind].Execute(&script, newScriptData(req, data, dataPath, w.path(req.Name, ".svg"))); err != nil {
		return fmt.Errorf("%s: gnuplot script: %w", req.Name, err)
	}
	scriptPath := w.path(req.Name, ".gnuplot")
	if err := filewriter.WriteFile(scriptPath, script.Bytes()); err != nil {
		return err
	}

	if w.Gnuplot == "" || len(data.Rows) == 0 {
		return nil
	}
	cmd := exec.CommandContext(ctx, w.Gnuplot, filepath.Base(scriptPath))
	cmd.Dir = w.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: gnuplot: %w: %q", req.Name, err, msg)
		}
		return fmt.Errorf("%s: gnuplot: %w", req.Name, err)
	}
	return nil
}

func (w *Writer) writeHTML(req Request) error {
	var buf bytes.Buffer
	if err := htmlTable.Execute(&buf, struct {
		Title string
		*Table
	}{req.Title, req.Table}); err != nil {
		return fmt.Errorf("%s: html table: %w", req.Name, err)
	}
	return filewriter.WriteFile(w.path(req.Name, ".html"), buf.Bytes())
}

func writeTSV(p string, t *Table) error {
	fw, err := filewriter.New(p)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(fw)
	cw.Comma = '\t'
	if err := cw.Write(t.Columns); err != nil {
		fw.Abort()
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		fw.Abort()
		return fmt.Errorf("write %s: %w", p, err)
	}
	return fw.Close()
}

type scriptMarker struct {
	X     string
	Label string
}

type scriptData struct {
	Title      string
	Output     string
	DataPath   string
	TimeX      bool
	LogX       bool
	Horizontal bool
	XStart     string
	XEnd       string
	XLabel     string
	YLabel     string
	Markers    []scriptMarker
	LastColumn int
	BinWidth   string
}

func newScriptData(req Request, data *Table, dataPath, output string) scriptData {
	timeX := (req.Kind == KindLine || req.Kind == KindArea) && isDateColumn(data, 0)
	coord := func(v string) string {
		if v == "" {
			return ""
		}
		if timeX {
			return quote(v)
		}
		return v
	}

	d := scriptData{
		Title:      escape(req.Title),
		Output:     escape(filepath.Base(output)),
		DataPath:   escape(filepath.Base(dataPath)),
		TimeX:      timeX,
		LogX:       req.Options.LogX,
		Horizontal: req.Options.Horizontal,
		XStart:     coord(req.Options.XStart),
		XEnd:       coord(req.Options.XEnd),
		XLabel:     escape(req.Options.XLabel),
		YLabel:     escape(req.Options.YLabel),
		LastColumn: len(data.Columns),
		BinWidth:   "1",
	}
	if req.Options.BinWidth > 0 {
		d.BinWidth = strconv.FormatFloat(req.Options.BinWidth, 'f', -1, 64)
	}
	for _, m := range req.Options.Markers {
		label := ""
		if m.Label != "" {
			label = quote(m.Label)
		}
		d.Markers = append(d.Markers, scriptMarker{X: coord(m.Value), Label: label})
	}
	return d
}

// isDateColumn reports whether every non-empty cell of column i is a date
func isDateColumn(t *Table, i int) bool {
	seen := false
	for _, row := range t.Rows {
		if row[i] == "" {
			continue
		}
		if _, ok := period.ParseDate(row[i]); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func quote(s string) string {
	return "'" + escape(s) + "'"
}
