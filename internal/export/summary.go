package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/teardrop/internal/engine"
	qrcode "github.com/skip2/go-qrcode"
)

// SummaryInfo holds the data encoded into the summary page QR code.
type SummaryInfo struct {
	RunID     string         `json:"run"`
	Op        string         `json:"op"`
	Added     int            `json:"added"`
	Removed   int            `json:"removed"`
	Skipped   map[string]int `json:"skipped,omitempty"`
	Ambiguous int            `json:"ambiguous,omitempty"`
	HPercent  float64        `json:"hpercent"`
	VPercent  float64        `json:"vpercent"`
	Segs      int            `json:"segs"`
}

const summaryQRSize = 50.0 // mm

// CollectSummary extracts the QR payload from a pass report.
func CollectSummary(report engine.Report) SummaryInfo {
	info := SummaryInfo{
		RunID:     report.RunID,
		Op:        string(report.Op),
		Added:     report.Added,
		Removed:   report.Removed,
		Ambiguous: report.Ambiguous,
		HPercent:  report.Params.HPercent,
		VPercent:  report.Params.VPercent,
		Segs:      report.Params.Segs,
	}
	if len(report.Skipped) > 0 {
		info.Skipped = make(map[string]int, len(report.Skipped))
		for reason, n := range report.Skipped {
			info.Skipped[string(reason)] = n
		}
	}
	return info
}

// SummaryQR encodes the run summary as JSON in a PNG QR code.
func SummaryQR(report engine.Report) ([]byte, error) {
	data, err := json.Marshal(CollectSummary(report))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// drawSummaryQR places the summary QR code with a caption at (x, y).
func drawSummaryQR(pdf *fpdf.Fpdf, report engine.Report, x, y float64) error {
	png, err := SummaryQR(report)
	if err != nil {
		return err
	}

	imgName := "qr_summary_" + report.RunID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x, y, summaryQRSize, summaryQRSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(x, y+summaryQRSize+1)
	pdf.CellFormat(summaryQRSize, 3, "Run summary (JSON)", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return pdf.Error()
}
