// teardrops adds or removes teardrop fills between tracks and the vias or
// pads they end on.
//
// Build:
//   go build -o teardrops ./cmd/teardrops
//
// Usage:
//   teardrops -board board.json set
//   teardrops -board board.json -preset Dense -pdf report.pdf set
//   teardrops -board board.json rm
//   teardrops -board board.dxf compare
//   teardrops presets
//   teardrops -file settings.json backup

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/piwi3910/teardrop/internal/board"
	"github.com/piwi3910/teardrop/internal/engine"
	"github.com/piwi3910/teardrop/internal/export"
	"github.com/piwi3910/teardrop/internal/gerber"
	"github.com/piwi3910/teardrop/internal/importer"
	"github.com/piwi3910/teardrop/internal/model"
	"github.com/piwi3910/teardrop/internal/project"
)

const recentBoardsLimit = 10

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "teardrops:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("teardrops", flag.ContinueOnError)
	opts := registerFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: teardrops [flags] set|rm|compare|presets|backup|restore|import-preset")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one command")
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	engine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := project.LoadAppConfig(opts.configPath)
	if err != nil {
		return err
	}
	custom, err := project.LoadCustomPresets(opts.presetsPath)
	if err != nil {
		engine.Logger().Warn("ignoring custom presets", "error", err)
	}
	model.CustomPresets = custom

	cmd := fs.Arg(0)
	switch cmd {
	case "presets":
		return listPresets(os.Stdout)
	case "backup", "restore", "import-preset":
		if opts.file == "" {
			return fmt.Errorf("-file is required for %s", cmd)
		}
		return runSettings(cmd, opts, cfg, custom)
	}

	params, err := resolveParams(fs, opts, cfg)
	if err != nil {
		return err
	}
	if opts.boardPath == "" {
		return fmt.Errorf("-board is required for %s", cmd)
	}
	doc, err := loadBoard(opts.boardPath)
	if err != nil {
		return err
	}

	switch cmd {
	case "set":
		err = runSet(doc, params, opts, cfg)
	case "rm":
		err = runRemove(doc, params, opts)
	case "compare":
		err = runCompare(doc, params)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}

	cfg.AddRecentBoard(opts.boardPath, recentBoardsLimit)
	if err := project.SaveAppConfig(opts.configPath, cfg); err != nil {
		engine.Logger().Warn("could not save config", "error", err)
	}
	return nil
}

// loadBoard reads a JSON board, or imports CSV, XLSX and DXF geometry.
func loadBoard(path string) (*board.Document, error) {
	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		result = importer.ImportCSV(path)
	case ".xlsx":
		result = importer.ImportExcel(path)
	case ".dxf":
		result = importer.ImportDXF(path, importer.DefaultDXFOptions())
	default:
		return project.LoadBoard(path)
	}

	for _, w := range result.Warnings {
		engine.Logger().Warn(w, "file", path)
	}
	if result.Board == nil || (len(result.Errors) > 0 && isEmpty(result.Board)) {
		return nil, fmt.Errorf("import of %s failed: %s", path, strings.Join(result.Errors, "; "))
	}
	for _, e := range result.Errors {
		engine.Logger().Error(e, "file", path)
	}
	result.Board.Name = filepath.Base(path)
	return result.Board, nil
}

func isEmpty(doc *board.Document) bool {
	return len(doc.Tracks)+len(doc.Vias)+len(doc.Pads)+len(doc.Zones) == 0
}

// outputPath returns where the modified board is written: -out, or the
// board itself when it is JSON, or a .json file beside an imported board.
func outputPath(opts *options) string {
	if opts.outPath != "" {
		return opts.outPath
	}
	ext := filepath.Ext(opts.boardPath)
	if strings.EqualFold(ext, ".json") {
		return opts.boardPath
	}
	return strings.TrimSuffix(opts.boardPath, ext) + ".json"
}

// reportPath places relative report paths in the configured output
// directory.
func reportPath(path string, cfg model.AppConfig) string {
	if cfg.OutputDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cfg.OutputDir, path)
}

func runSet(doc *board.Document, params model.Params, opts *options, cfg model.AppConfig) error {
	placer := engine.New(board.NewEditor(doc), board.NewFiller(doc), params)
	report, err := placer.Place()
	if err != nil {
		return err
	}

	fmt.Println(report.Summary())
	if cfg.ShowSkipped || opts.verbose {
		for _, reason := range report.SkipReasons() {
			fmt.Printf("  skipped %-18s %d\n", reason, report.Skipped[reason])
		}
		if report.Ambiguous > 0 {
			fmt.Printf("  ambiguous chains    %d\n", report.Ambiguous)
		}
	}

	violations := engine.CheckClearance(doc.Tracks, doc.Vias, doc.Pads, report.Shapes, opts.clearance)
	for _, w := range engine.FormatClearanceWarnings(violations) {
		fmt.Println("  warning:", w)
	}

	if err := project.SaveBoard(outputPath(opts), doc); err != nil {
		return err
	}
	return writeReports(doc, report, opts, cfg)
}

func runRemove(doc *board.Document, params model.Params, opts *options) error {
	report, err := engine.New(board.NewEditor(doc), board.NewFiller(doc), params).RemoveAll()
	if err != nil {
		return err
	}
	fmt.Println(report.Summary())
	if report.Removed == 0 {
		return nil
	}
	return project.SaveBoard(outputPath(opts), doc)
}

func runCompare(doc *board.Document, params model.Params) error {
	results, err := engine.CompareScenarios(board.NewEditor(doc), engine.BuildDefaultScenarios(params))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tADDED\tSKIPPED\tAMBIGUOUS\tAREA")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.0f\n", r.Scenario.Name, r.Added, r.Skipped, r.Ambiguous, r.Area)
	}
	return w.Flush()
}

func listPresets(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLENGTH\tWIDTH\tSEGS\tDESCRIPTION")
	for _, p := range model.AllPresets() {
		fmt.Fprintf(w, "%s\t%.0f%%\t%.0f%%\t%d\t%s\n", p.Name, p.Params.HPercent, p.Params.VPercent, p.Params.Segs, p.Description)
	}
	return w.Flush()
}

// runSettings moves config and custom presets in and out of a single file.
func runSettings(cmd string, opts *options, cfg model.AppConfig, custom []model.Preset) error {
	switch cmd {
	case "backup":
		if err := project.ExportAllData(opts.file, cfg, custom); err != nil {
			return err
		}
		fmt.Printf("settings written to %s\n", opts.file)
		return nil
	case "restore":
		data, err := project.ImportAllData(opts.file)
		if err != nil {
			return err
		}
		if err := project.SaveAppConfig(opts.configPath, data.Config); err != nil {
			return err
		}
		if err := project.SaveCustomPresets(opts.presetsPath, data.Presets); err != nil {
			return err
		}
		fmt.Printf("restored config and %d presets\n", len(data.Presets))
		return nil
	}

	preset, err := project.ImportPreset(opts.file)
	if err != nil {
		return err
	}
	kept := custom[:0]
	for _, p := range custom {
		if p.Name != preset.Name {
			kept = append(kept, p)
		}
	}
	if err := project.SaveCustomPresets(opts.presetsPath, append(kept, preset)); err != nil {
		return err
	}
	fmt.Printf("preset %q imported\n", preset.Name)
	return nil
}

// writeReports produces every report file requested on the command line.
func writeReports(doc *board.Document, report engine.Report, opts *options, cfg model.AppConfig) error {
	if opts.pdfPath != "" {
		if err := export.ExportPDF(reportPath(opts.pdfPath, cfg), doc, report); err != nil {
			return fmt.Errorf("failed to export PDF: %w", err)
		}
	}
	if opts.xlsxPath != "" {
		if err := export.ExportXLSX(reportPath(opts.xlsxPath, cfg), report); err != nil {
			return fmt.Errorf("failed to export XLSX: %w", err)
		}
	}

	teardrops := doc.Teardrops()
	if opts.dxfPath != "" && len(teardrops) > 0 {
		if err := export.ExportDXF(reportPath(opts.dxfPath, cfg), teardrops, 1e6); err != nil {
			return fmt.Errorf("failed to export DXF: %w", err)
		}
	}
	if opts.gerberPrefix != "" && len(teardrops) > 0 {
		files := gerber.New(6).GenerateLayers(teardrops)
		for layer, code := range files {
			name := fmt.Sprintf("%s-%s.gbr", opts.gerberPrefix, strings.ReplaceAll(string(layer), ".", "_"))
			if err := os.WriteFile(reportPath(name, cfg), []byte(code), 0644); err != nil {
				return fmt.Errorf("failed to write Gerber for %s: %w", layer, err)
			}
		}
	}
	return nil
}
