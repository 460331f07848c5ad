package export

import (
	"encoding/csv"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticare/opticare/internal/domain/inventory"
	"github.com/opticare/opticare/internal/domain/patient"
	"github.com/opticare/opticare/internal/domain/prescription"
	"github.com/opticare/opticare/internal/platform/analytics"
)

func sampleReport() *analytics.Report {
	return &analytics.Report{
		From:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:            time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		TotalPatients: 2,
		NewPatients:   2,
		Revenue:       analytics.Revenue{Consultation: 800, Total: 800},
		TimeSeries: []analytics.DayBucket{
			{Date: "2026-03-01", Patients: 1, Revenue: 500},
			{Date: "2026-03-02", Patients: 1, Revenue: 300},
		},
	}
}

func TestExportReport_CSV(t *testing.T) {
	e := NewExporter(t.TempDir())

	path, err := e.ExportReport(sampleReport(), FormatCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".csv"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"metric", "value"}, rows[0])
	last := rows[len(rows)-1]
	assert.Equal(t, "2026-03-02", last[0])
	assert.Equal(t, "300.00", last[6])
}

func TestExportReport_TSV(t *testing.T) {
	e := NewExporter(t.TempDir())

	path, err := e.ExportReport(sampleReport(), FormatTSV)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".tsv"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "metric\tvalue")
}

func TestExportReport_PDFUnsupported(t *testing.T) {
	e := NewExporter(t.TempDir())

	_, err := e.ExportReport(sampleReport(), FormatPDF)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExportMedicines(t *testing.T) {
	e := NewExporter(t.TempDir())

	batch := "B42"
	items := []*inventory.Medicine{
		{Name: "Timolol", Batch: &batch, Quantity: 5, Price: 120, Status: "available"},
	}
	path, err := e.ExportMedicines(items, FormatCSV)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Timolol", "B42", "", "5", "120.00", "available"}, rows[1])
}

func TestExportPrescriptions(t *testing.T) {
	e := NewExporter(t.TempDir())

	items := []*prescription.Prescription{
		{
			SerialNumber:   "0001",
			ReceiptNumber:  "R0001",
			PatientID:      uuid.New(),
			AmountReceived: 500,
			AmountDue:      200,
			Discount:       50,
			CreatedAt:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	path, err := e.ExportPrescriptions(items, FormatCSV)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "0001", rows[1][0])
	assert.Equal(t, "650.00", rows[1][8])
}

func TestExportPatients(t *testing.T) {
	e := NewExporter(t.TempDir())

	guardian := "Self"
	patients := []*patient.Patient{
		{Number: "P0001", Name: "Jane Doe", Guardian: &guardian, CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	path, err := e.ExportPatients(patients, FormatCSV)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "P0001", rows[1][0])
	assert.Equal(t, "Jane Doe", rows[1][1])
	assert.Equal(t, "Self", rows[1][2])
}
