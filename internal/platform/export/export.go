package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/opticare/opticare/internal/domain/inventory"
	"github.com/opticare/opticare/internal/domain/patient"
	"github.com/opticare/opticare/internal/domain/prescription"
	"github.com/opticare/opticare/internal/platform/analytics"
)

const (
	FormatCSV = "csv"
	FormatTSV = "tsv"
	FormatPDF = "pdf"
)

// ErrUnsupportedFormat covers formats the exporter knows about but cannot
// produce. PDF export has never been implemented.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Exporter writes report and record snapshots as delimited files under a
// fixed directory. This is the explicit export job: nothing in the write path
// mirrors data anywhere, a snapshot exists only when someone asks for one.
type Exporter struct {
	dir string
}

func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

func (e *Exporter) open(name, format string) (*os.File, *csv.Writer, error) {
	var ext string
	var comma rune
	switch format {
	case FormatCSV:
		ext, comma = "csv", ','
	case FormatTSV:
		ext, comma = "tsv", '\t'
	default:
		return nil, nil, ErrUnsupportedFormat
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(e.dir, fmt.Sprintf("%s_%s.%s", name, time.Now().Format("20060102_150405"), ext))
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create export file: %w", err)
	}
	w := csv.NewWriter(f)
	w.Comma = comma
	return f, w, nil
}

// ExportReport writes the analytics summary and its per-day series. Returns
// the path of the written file.
func (e *Exporter) ExportReport(report *analytics.Report, format string) (string, error) {
	f, w, err := e.open("analytics", format)
	if err != nil {
		return "", err
	}
	defer f.Close()

	summary := [][]string{
		{"metric", "value"},
		{"from", report.From.Format("2006-01-02")},
		{"to", report.To.Format("2006-01-02")},
		{"total_patients", strconv.Itoa(report.TotalPatients)},
		{"new_patients", strconv.Itoa(report.NewPatients)},
		{"returning_patients", strconv.Itoa(report.ReturningPatients)},
		{"revenue_consultation", formatAmount(report.Revenue.Consultation)},
		{"revenue_medicine", formatAmount(report.Revenue.Medicine)},
		{"revenue_optical", formatAmount(report.Revenue.Optical)},
		{"revenue_operation", formatAmount(report.Revenue.Operation)},
		{"revenue_lab", formatAmount(report.Revenue.Lab)},
		{"revenue_total", formatAmount(report.Revenue.Total)},
		{"outstanding", formatAmount(report.Revenue.Outstanding)},
		{"success_rate", formatAmount(report.SuccessRate)},
		{},
		{"date", "patients", "prescriptions", "dispenses", "operations", "labs", "revenue"},
	}
	if err := w.WriteAll(summary); err != nil {
		return "", err
	}
	for _, b := range report.TimeSeries {
		row := []string{
			b.Date,
			strconv.Itoa(b.Patients),
			strconv.Itoa(b.Prescriptions),
			strconv.Itoa(b.Dispenses),
			strconv.Itoa(b.Operations),
			strconv.Itoa(b.Labs),
			formatAmount(b.Revenue),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// ExportPatients writes a full patient snapshot.
func (e *Exporter) ExportPatients(patients []*patient.Patient, format string) (string, error) {
	f, w, err := e.open("patients", format)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := w.Write([]string{"number", "name", "guardian", "gender", "age", "phone", "address", "registered"}); err != nil {
		return "", err
	}
	for _, p := range patients {
		row := []string{
			p.Number,
			p.Name,
			deref(p.Guardian),
			deref(p.Gender),
			strconv.Itoa(p.EffectiveAge(time.Now())),
			deref(p.Phone),
			deref(p.Address),
			p.CreatedAt.Format("2006-01-02"),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// ExportPrescriptions writes prescription billing rows.
func (e *Exporter) ExportPrescriptions(items []*prescription.Prescription, format string) (string, error) {
	f, w, err := e.open("prescriptions", format)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := w.Write([]string{"serial", "receipt", "patient_id", "complaint", "diagnosis", "received", "due", "discount", "total", "issued"}); err != nil {
		return "", err
	}
	for _, p := range items {
		row := []string{
			p.SerialNumber,
			p.ReceiptNumber,
			p.PatientID.String(),
			deref(p.Complaint),
			deref(p.Diagnosis),
			formatAmount(p.AmountReceived),
			formatAmount(p.AmountDue),
			formatAmount(p.Discount),
			formatAmount(p.Total()),
			p.CreatedAt.Format("2006-01-02"),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// ExportMedicines writes the medicine stock list.
func (e *Exporter) ExportMedicines(items []*inventory.Medicine, format string) (string, error) {
	f, w, err := e.open("medicines", format)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := w.Write([]string{"name", "batch", "expiry", "quantity", "price", "status"}); err != nil {
		return "", err
	}
	for _, m := range items {
		expiry := ""
		if m.Expiry != nil {
			expiry = m.Expiry.Format("2006-01-02")
		}
		row := []string{
			m.Name,
			deref(m.Batch),
			expiry,
			strconv.Itoa(m.Quantity),
			formatAmount(m.Price),
			m.Status,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// ExportOpticals writes the frame and lens stock list.
func (e *Exporter) ExportOpticals(items []*inventory.OpticalItem, format string) (string, error) {
	f, w, err := e.open("opticals", format)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := w.Write([]string{"kind", "brand", "model", "size", "power", "quantity", "price", "status"}); err != nil {
		return "", err
	}
	for _, o := range items {
		row := []string{
			o.Kind,
			o.Brand,
			deref(o.Model),
			deref(o.Size),
			deref(o.Power),
			strconv.Itoa(o.Quantity),
			formatAmount(o.Price),
			o.Status,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
