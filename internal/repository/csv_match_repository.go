package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/martofrog/tennis-predictions/internal/models"
)

// csvHeader is the normalized column layout for stored match files
var csvHeader = []string{"date", "tour", "winner", "loser", "winner_score", "loser_score", "surface"}

const csvDateLayout = "2006-01-02"

// CSVMatchRepository stores match records as per-year, per-tour CSV files
// under data/{tour}/{tour}_matches_{year}.csv.
type CSVMatchRepository struct {
	dataDir string
}

// NewCSVMatchRepository creates a CSV match repository rooted at dataDir
func NewCSVMatchRepository(dataDir string) *CSVMatchRepository {
	return &CSVMatchRepository{dataDir: dataDir}
}

func (r *CSVMatchRepository) filePath(year int, tour models.Tour) string {
	return filepath.Join(r.dataDir, string(tour), fmt.Sprintf("%s_matches_%d.csv", tour, year))
}

// LoadMatches loads records for the given years and tour, sorted by match date.
// A nil years slice loads every year present on disk.
func (r *CSVMatchRepository) LoadMatches(ctx context.Context, years []int, tour models.Tour) ([]models.MatchRecord, error) {
	tours := []models.Tour{models.TourATP, models.TourWTA}
	if tour != "" {
		tours = []models.Tour{tour}
	}

	var records []models.MatchRecord
	for _, t := range tours {
		resolved := years
		if resolved == nil {
			var err error
			resolved, err = r.availableYears(t)
			if err != nil {
				return nil, err
			}
		}
		for _, year := range resolved {
			yearRecords, err := r.loadFile(t, year)
			if err != nil {
				return nil, err
			}
			records = append(records, yearRecords...)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MatchDate.Before(records[j].MatchDate)
	})
	return records, nil
}

// SaveMatches writes the records for one year and tour, replacing any existing file
func (r *CSVMatchRepository) SaveMatches(ctx context.Context, records []models.MatchRecord, year int, tour models.Tour) error {
	path := r.filePath(year, tour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return models.NewRepositoryError("create match data directory", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return models.NewRepositoryError("create match file", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return models.NewRepositoryError("write match header", err)
	}
	for _, rec := range records {
		row := []string{
			rec.MatchDate.Format(csvDateLayout),
			string(rec.Tour),
			rec.Winner,
			rec.Loser,
			rec.WinnerScore,
			rec.LoserScore,
			string(rec.Surface),
		}
		if err := w.Write(row); err != nil {
			return models.NewRepositoryError("write match row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return models.NewRepositoryError("flush match file", err)
	}
	return nil
}

// GetByDate returns the matches played on the given calendar date.
// Only the date's year and the preceding year are scanned, matching how far
// back result files are kept hot.
func (r *CSVMatchRepository) GetByDate(ctx context.Context, date time.Time, tour models.Tour) ([]models.MatchRecord, error) {
	years := []int{date.Year() - 1, date.Year()}
	all, err := r.LoadMatches(ctx, years, tour)
	if err != nil {
		return nil, err
	}

	y, m, d := date.Date()
	var out []models.MatchRecord
	for _, rec := range all {
		ry, rm, rd := rec.MatchDate.Date()
		if ry == y && rm == m && rd == d {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Exists reports whether data is present for a year and tour
func (r *CSVMatchRepository) Exists(ctx context.Context, year int, tour models.Tour) (bool, error) {
	_, err := os.Stat(r.filePath(year, tour))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, models.NewRepositoryError("stat match file", err)
}

func (r *CSVMatchRepository) availableYears(tour models.Tour) ([]int, error) {
	pattern := filepath.Join(r.dataDir, string(tour), fmt.Sprintf("%s_matches_*.csv", tour))
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, models.NewRepositoryError("glob match files", err)
	}

	var years []int
	for _, p := range paths {
		base := filepath.Base(p)
		yearStr := base[len(fmt.Sprintf("%s_matches_", tour)) : len(base)-len(".csv")]
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			continue
		}
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}

func (r *CSVMatchRepository) loadFile(tour models.Tour, year int) ([]models.MatchRecord, error) {
	f, err := os.Open(r.filePath(year, tour))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, models.NewRepositoryError("open match file", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, models.NewRepositoryError("read match file", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[name] = i
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	var records []models.MatchRecord
	for _, row := range rows[1:] {
		date, err := time.Parse(csvDateLayout, field(row, "date"))
		if err != nil {
			// Skip rows without a usable date; the trainer counts them
			// as errors when they reach it via other columns, but an
			// undated row cannot be ordered at all.
			continue
		}
		records = append(records, models.MatchRecord{
			Winner:      models.NormalizePlayerName(field(row, "winner")),
			Loser:       models.NormalizePlayerName(field(row, "loser")),
			WinnerScore: field(row, "winner_score"),
			LoserScore:  field(row, "loser_score"),
			Surface:     models.ParseSurface(field(row, "surface")),
			Tour:        models.ParseTour(field(row, "tour")),
			MatchDate:   date,
		})
	}
	return records, nil
}
