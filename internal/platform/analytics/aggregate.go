package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Row projections carry just the fields the aggregation needs, so the source
// can select narrow columns instead of whole entities.

type PatientRow struct {
	Gender    string
	Age       int
	CreatedAt time.Time
}

type PrescriptionRow struct {
	PatientID string
	Complaint string
	Diagnosis string
	Received  float64
	Due       float64
	CreatedAt time.Time
}

type DispenseRow struct {
	Kind      string
	Total     float64
	CreatedAt time.Time
}

type OperationRow struct {
	Status    string
	Total     float64
	CreatedAt time.Time
}

type LabRow struct {
	Total     float64
	Received  float64
	CreatedAt time.Time
}

// Source fetches the raw collections for a date range. Implementations exist
// for postgres and for tests.
type Source interface {
	Patients(ctx context.Context, from, to time.Time) ([]PatientRow, error)
	Prescriptions(ctx context.Context, from, to time.Time) ([]PrescriptionRow, error)
	Dispenses(ctx context.Context, from, to time.Time) ([]DispenseRow, error)
	Operations(ctx context.Context, from, to time.Time) ([]OperationRow, error)
	Labs(ctx context.Context, from, to time.Time) ([]LabRow, error)
}

type FreqEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type Revenue struct {
	Consultation float64 `json:"consultation"`
	Medicine     float64 `json:"medicine"`
	Optical      float64 `json:"optical"`
	Operation    float64 `json:"operation"`
	Lab          float64 `json:"lab"`
	Total        float64 `json:"total"`
	Outstanding  float64 `json:"outstanding"`
}

type DayBucket struct {
	Date          string  `json:"date"`
	Patients      int     `json:"patients"`
	Prescriptions int     `json:"prescriptions"`
	Dispenses     int     `json:"dispenses"`
	Operations    int     `json:"operations"`
	Labs          int     `json:"labs"`
	Revenue       float64 `json:"revenue"`
}

type Report struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	TotalPatients     int            `json:"total_patients"`
	NewPatients       int            `json:"new_patients"`
	ReturningPatients int            `json:"returning_patients"`
	GenderCounts      map[string]int `json:"gender_counts"`
	AgeBuckets        map[string]int `json:"age_buckets"`

	TopComplaints []FreqEntry `json:"top_complaints"`
	TopDiagnoses  []FreqEntry `json:"top_diagnoses"`

	Revenue Revenue `json:"revenue"`

	TimeSeries []DayBucket `json:"time_series"`

	// PeakHour is the busiest prescription hour of day (0-23), derived from
	// issue timestamps. -1 when no prescriptions fall in range.
	PeakHour int `json:"peak_hour"`
	// SuccessRate is the share of in-range operations already discharged, in
	// percent.
	SuccessRate float64 `json:"success_rate"`
}

// TopN is how many complaint/diagnosis entries the dashboard shows.
const TopN = 5

type Aggregator struct {
	source Source
	log    zerolog.Logger
}

func NewAggregator(source Source, log zerolog.Logger) *Aggregator {
	return &Aggregator{source: source, log: log}
}

// Aggregate reduces all collections in [from, to) into a dashboard report.
// A failed fetch of any one collection logs a warning and contributes zeros;
// the report is always produced.
func (a *Aggregator) Aggregate(ctx context.Context, from, to time.Time) (*Report, error) {
	report := &Report{
		From:         from,
		To:           to,
		GenderCounts: map[string]int{},
		AgeBuckets:   map[string]int{},
		PeakHour:     -1,
	}

	// One bucket per calendar day in range, present even when empty.
	buckets := map[string]*DayBucket{}
	for day := from.Truncate(24 * time.Hour); day.Before(to); day = day.Add(24 * time.Hour) {
		key := day.Format("2006-01-02")
		buckets[key] = &DayBucket{Date: key}
	}

	patients, err := a.source.Patients(ctx, from, to)
	if err != nil {
		a.log.Warn().Err(err).Msg("analytics: patients fetch failed, contributing zeros")
		patients = nil
	}
	for _, p := range patients {
		report.TotalPatients++
		report.NewPatients++
		if p.Gender != "" {
			report.GenderCounts[p.Gender]++
		}
		report.AgeBuckets[ageBucket(p.Age)]++
		if b := buckets[p.CreatedAt.Format("2006-01-02")]; b != nil {
			b.Patients++
		}
	}

	prescriptions, err := a.source.Prescriptions(ctx, from, to)
	if err != nil {
		a.log.Warn().Err(err).Msg("analytics: prescriptions fetch failed, contributing zeros")
		prescriptions = nil
	}
	complaintCounts := map[string]int{}
	var complaintOrder []string
	diagnosisCounts := map[string]int{}
	var diagnosisOrder []string
	hourCounts := [24]int{}
	seenPatients := map[string]int{}
	for _, p := range prescriptions {
		if p.Complaint != "" {
			if complaintCounts[p.Complaint] == 0 {
				complaintOrder = append(complaintOrder, p.Complaint)
			}
			complaintCounts[p.Complaint]++
		}
		if p.Diagnosis != "" {
			if diagnosisCounts[p.Diagnosis] == 0 {
				diagnosisOrder = append(diagnosisOrder, p.Diagnosis)
			}
			diagnosisCounts[p.Diagnosis]++
		}
		hourCounts[p.CreatedAt.Hour()]++
		seenPatients[p.PatientID]++
		report.Revenue.Consultation += p.Received
		report.Revenue.Outstanding += p.Due
		if b := buckets[p.CreatedAt.Format("2006-01-02")]; b != nil {
			b.Prescriptions++
			b.Revenue += p.Received
		}
	}
	for _, visits := range seenPatients {
		if visits > 1 {
			report.ReturningPatients++
		}
	}
	report.TopComplaints = topN(complaintCounts, complaintOrder, TopN)
	report.TopDiagnoses = topN(diagnosisCounts, diagnosisOrder, TopN)
	report.PeakHour = peakHour(hourCounts)

	dispenses, err := a.source.Dispenses(ctx, from, to)
	if err != nil {
		a.log.Warn().Err(err).Msg("analytics: dispenses fetch failed, contributing zeros")
		dispenses = nil
	}
	for _, d := range dispenses {
		switch d.Kind {
		case "optical":
			report.Revenue.Optical += d.Total
		default:
			report.Revenue.Medicine += d.Total
		}
		if b := buckets[d.CreatedAt.Format("2006-01-02")]; b != nil {
			b.Dispenses++
			b.Revenue += d.Total
		}
	}

	operations, err := a.source.Operations(ctx, from, to)
	if err != nil {
		a.log.Warn().Err(err).Msg("analytics: operations fetch failed, contributing zeros")
		operations = nil
	}
	discharged := 0
	for _, o := range operations {
		report.Revenue.Operation += o.Total
		if o.Status == "discharged" {
			discharged++
		}
		if b := buckets[o.CreatedAt.Format("2006-01-02")]; b != nil {
			b.Operations++
			b.Revenue += o.Total
		}
	}
	if len(operations) > 0 {
		report.SuccessRate = 100 * float64(discharged) / float64(len(operations))
	}

	labs, err := a.source.Labs(ctx, from, to)
	if err != nil {
		a.log.Warn().Err(err).Msg("analytics: labs fetch failed, contributing zeros")
		labs = nil
	}
	for _, l := range labs {
		report.Revenue.Lab += l.Received
		report.Revenue.Outstanding += l.Total - l.Received
		if b := buckets[l.CreatedAt.Format("2006-01-02")]; b != nil {
			b.Labs++
			b.Revenue += l.Received
		}
	}

	report.Revenue.Total = report.Revenue.Consultation + report.Revenue.Medicine +
		report.Revenue.Optical + report.Revenue.Operation + report.Revenue.Lab

	for day := from.Truncate(24 * time.Hour); day.Before(to); day = day.Add(24 * time.Hour) {
		report.TimeSeries = append(report.TimeSeries, *buckets[day.Format("2006-01-02")])
	}
	return report, nil
}

func ageBucket(age int) string {
	switch {
	case age < 13:
		return "0-12"
	case age < 20:
		return "13-19"
	case age < 40:
		return "20-39"
	case age < 60:
		return "40-59"
	default:
		return "60+"
	}
}

// topN returns the n most frequent values, ties broken by first-encountered
// order.
func topN(counts map[string]int, order []string, n int) []FreqEntry {
	entries := make([]FreqEntry, 0, len(order))
	for _, v := range order {
		entries = append(entries, FreqEntry{Value: v, Count: counts[v]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func peakHour(hours [24]int) int {
	peak, best := -1, 0
	for h, c := range hours {
		if c > best {
			peak, best = h, c
		}
	}
	return peak
}
