// Package importer reads board geometry from CSV, Excel and DXF files.
// CSV and Excel files hold one copper item per row; delimiters and column
// headers are detected automatically and header matching is
// case-insensitive.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/teardrop/internal/board"
	"github.com/piwi3910/teardrop/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Board    *board.Document
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Type     int
	X        int
	Y        int
	X2       int // track end, or arc centre
	Y2       int
	Width    int
	Layer    int
	Net      int
	Angle    int
	Diameter int // via diameter, pad width
	Height   int // pad height
	Drill    int
	Mount    int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"type":     {"type", "kind", "item", "object"},
	"x":        {"x", "x1", "start x", "pos x", "position x"},
	"y":        {"y", "y1", "start y", "pos y", "position y"},
	"x2":       {"x2", "end x", "center x", "centre x"},
	"y2":       {"y2", "end y", "center y", "centre y"},
	"width":    {"width", "track width", "tw"},
	"layer":    {"layer", "layers", "copper"},
	"net":      {"net", "net name", "signal"},
	"angle":    {"angle", "sweep", "arc angle"},
	"diameter": {"diameter", "dia", "size", "size x", "pad width"},
	"height":   {"height", "size y", "pad height"},
	"drill":    {"drill", "hole", "drill diameter"},
	"mount":    {"mount", "pad type", "technology", "attribute"},
}

// positionalMapping is used when the first row is not a header: Type, X,
// Y, X2, Y2, Width, Layer, Net, Angle, Diameter, Height, Drill, Mount.
var positionalMapping = ColumnMapping{
	Type: 0, X: 1, Y: 2, X2: 3, Y2: 4, Width: 5, Layer: 6, Net: 7,
	Angle: 8, Diameter: 9, Height: 10, Drill: 11, Mount: 12,
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	roles := make(map[string]int)
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					if _, seen := roles[role]; !seen {
						roles[role] = i
					}
				}
			}
		}
	}

	if len(roles) == 0 {
		return positionalMapping, false
	}

	col := func(role string) int {
		if i, ok := roles[role]; ok {
			return i
		}
		return -1
	}
	return ColumnMapping{
		Type:     col("type"),
		X:        col("x"),
		Y:        col("y"),
		X2:       col("x2"),
		Y2:       col("y2"),
		Width:    col("width"),
		Layer:    col("layer"),
		Net:      col("net"),
		Angle:    col("angle"),
		Diameter: col("diameter"),
		Height:   col("height"),
		Drill:    col("drill"),
		Mount:    col("mount"),
	}, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// rowParser parses the cells of one row, remembering the first error.
type rowParser struct {
	row     []string
	label   string
	errMsg  string
	mapping ColumnMapping
}

func (p *rowParser) length(idx int, name string, required bool) int64 {
	s := getCell(p.row, idx)
	if s == "" {
		if required && p.errMsg == "" {
			p.errMsg = fmt.Sprintf("%s: Missing %s value", p.label, name)
		}
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if p.errMsg == "" {
			p.errMsg = fmt.Sprintf("%s: Invalid %s '%s'", p.label, name, s)
		}
		return 0
	}
	return int64(math.Round(v))
}

func (p *rowParser) float(idx int, name string) float64 {
	s := getCell(p.row, idx)
	if s == "" {
		if p.errMsg == "" {
			p.errMsg = fmt.Sprintf("%s: Missing %s value", p.label, name)
		}
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.errMsg == "" {
		p.errMsg = fmt.Sprintf("%s: Invalid %s '%s'", p.label, name, s)
	}
	return v
}

// parseLayers splits a layer cell on spaces, semicolons, plus signs or
// pipes.
func parseLayers(s string) []model.Layer {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ';' || r == '+' || r == '|'
	})
	layers := make([]model.Layer, 0, len(fields))
	for _, f := range fields {
		layers = append(layers, model.Layer(f))
	}
	return layers
}

// parseMount converts a mount string to a model.PadMount.
func parseMount(s string) (model.PadMount, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tht", "through-hole", "through hole", "pth":
		return model.MountThroughHole, true
	case "smd", "smt", "surface-mount":
		return model.MountSMD, true
	case "conn", "connector":
		return model.MountConnector, true
	case "npth", "np_thru_hole":
		return model.MountNPTH, true
	}
	return "", false
}

// parseRow adds the item described by row to doc. Returns any error
// message and any warning message.
func parseRow(doc *board.Document, row []string, mapping ColumnMapping, rowLabel string) (string, string) {
	p := &rowParser{row: row, label: rowLabel, mapping: mapping}
	kind := strings.ToLower(getCell(row, mapping.Type))
	net := getCell(row, mapping.Net)
	x, y := p.length(mapping.X, "x", true), p.length(mapping.Y, "y", true)

	var warning string
	switch kind {
	case "track", "segment", "line":
		x2, y2 := p.length(mapping.X2, "x2", true), p.length(mapping.Y2, "y2", true)
		width := p.length(mapping.Width, "width", true)
		layer := model.Layer(getCell(row, mapping.Layer))
		if p.errMsg != "" {
			return p.errMsg, ""
		}
		if width <= 0 {
			return fmt.Sprintf("%s: Width must be positive", rowLabel), ""
		}
		if !layer.IsCopper() {
			return fmt.Sprintf("%s: Layer '%s' is not a copper layer", rowLabel, layer), ""
		}
		doc.Tracks = append(doc.Tracks, model.NewTrack(model.Pt(x, y), model.Pt(x2, y2), width, layer, net))

	case "arc":
		cx, cy := p.length(mapping.X2, "centre x", true), p.length(mapping.Y2, "centre y", true)
		angle := p.float(mapping.Angle, "angle")
		width := p.length(mapping.Width, "width", true)
		layer := model.Layer(getCell(row, mapping.Layer))
		if p.errMsg != "" {
			return p.errMsg, ""
		}
		if width <= 0 || angle == 0 {
			return fmt.Sprintf("%s: Width and angle must be non-zero", rowLabel), ""
		}
		if !layer.IsCopper() {
			return fmt.Sprintf("%s: Layer '%s' is not a copper layer", rowLabel, layer), ""
		}
		doc.Tracks = append(doc.Tracks, model.NewArcTrack(model.Pt(x, y), model.Pt(cx, cy), angle, width, layer, net))

	case "via":
		dia := p.length(mapping.Diameter, "diameter", true)
		drill := p.length(mapping.Drill, "drill", false)
		if p.errMsg != "" {
			return p.errMsg, ""
		}
		if dia <= 0 {
			return fmt.Sprintf("%s: Diameter must be positive", rowLabel), ""
		}
		if drill == 0 {
			drill = dia / 2
			warning = fmt.Sprintf("%s: No drill given, using %d", rowLabel, drill)
		}
		doc.Vias = append(doc.Vias, model.NewVia(model.Pt(x, y), dia, drill, net))

	case "pad":
		w := p.length(mapping.Diameter, "size", true)
		h := p.length(mapping.Height, "height", false)
		drill := p.length(mapping.Drill, "drill", false)
		if p.errMsg != "" {
			return p.errMsg, ""
		}
		if h == 0 {
			h = w
		}
		if w <= 0 || h <= 0 {
			return fmt.Sprintf("%s: Pad size must be positive", rowLabel), ""
		}
		mount := model.MountSMD
		if drill > 0 {
			mount = model.MountThroughHole
		}
		if s := getCell(row, mapping.Mount); s != "" {
			m, ok := parseMount(s)
			if ok {
				mount = m
			} else {
				warning = fmt.Sprintf("%s: Unknown mount '%s', defaulting to %s", rowLabel, s, mount)
			}
		}
		layers := parseLayers(getCell(row, mapping.Layer))
		if len(layers) == 0 {
			layers = []model.Layer{model.FrontCopper}
			if mount == model.MountThroughHole {
				layers = append(layers, model.BackCopper)
			}
		}
		pad := model.NewPad(model.Pt(x, y), model.Size{W: w, H: h}, mount, layers, net)
		pad.Drill = drill
		doc.Pads = append(doc.Pads, pad)

	case "":
		return fmt.Sprintf("%s: Missing type", rowLabel), ""
	default:
		return fmt.Sprintf("%s: Unknown type '%s'", rowLabel, kind), ""
	}

	return "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports board items from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports board items from a CSV reader with a
// specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports board items from the first sheet of an Excel file.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Board:    board.New(""),
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Type == -1 {
			missing = append(missing, "Type")
		}
		if mapping.X == -1 {
			missing = append(missing, "X")
		}
		if mapping.Y == -1 {
			missing = append(missing, "Y")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			// Unrecognized header: skip it but use positional mapping
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		errMsg, warning := parseRow(result.Board, row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
	}

	return result
}
