package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/uyouii/density-estimation/model"
	"github.com/uyouii/density-estimation/utils"
)

var rawHeader = []string{"Distribution", "Parameters", "Rep", "Seed", "Method", "Bandwidth", "IMSE", "Integral", "Warnings"}

var summaryHeader = []string{"Distribution", "Parameters", "Method", "Reps", "MeanIMSE", "StdIMSE", "MinIMSE", "MaxIMSE"}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatParams(params []float64) string {
	res := "["
	for i, p := range params {
		if i > 0 {
			res += " "
		}
		res += formatFloat(p)
	}
	return res + "]"
}

// WriteRaw writes one row per IMSE score.
func WriteRaw(w io.Writer, results []model.ExperimentResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rawHeader); err != nil {
		return errors.Wrap(err, "write raw header")
	}
	for _, r := range results {
		row := []string{
			r.Distribution,
			formatParams(r.Params),
			strconv.Itoa(r.Rep),
			strconv.FormatUint(r.Seed, 10),
			string(r.Method),
			formatFloat(r.Bandwidth),
			formatFloat(r.IMSE),
			formatFloat(r.Integral),
			strconv.Itoa(r.Warnings),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "write raw row")
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the aggregated IMSE per distribution and method.
func WriteSummary(w io.Writer, summaries []model.MethodSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return errors.Wrap(err, "write summary header")
	}
	for _, s := range summaries {
		row := []string{
			s.Distribution,
			formatParams(s.Params),
			string(s.Method),
			strconv.Itoa(s.Reps),
			formatFloat(s.MeanIMSE),
			formatFloat(s.StdIMSE),
			formatFloat(s.MinIMSE),
			formatFloat(s.MaxIMSE),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "write summary row")
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProfile writes the per stage times, longest first, in seconds.
func WriteProfile(w io.Writer, stages map[string]time.Duration, total time.Duration, jobs int) error {
	names := make([]string, 0, len(stages))
	for name := range stages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if stages[names[i]] == stages[names[j]] {
			return names[i] < names[j]
		}
		return stages[names[i]] > stages[names[j]]
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Stage", "TotalSeconds", "PerJobSeconds"}); err != nil {
		return errors.Wrap(err, "write profile header")
	}
	rows := [][]string{{"total", formatFloat(utils.FormatFloat(total.Seconds(), 6)), ""}}
	for _, name := range names {
		perJob := ""
		if jobs > 0 {
			perJob = formatFloat(utils.FormatFloat(stages[name].Seconds()/float64(jobs), 6))
		}
		rows = append(rows, []string{name, formatFloat(utils.FormatFloat(stages[name].Seconds(), 6)), perJob})
	}
	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "write profile rows")
	}
	return nil
}

// CreateFile creates path and its parent directories.
func CreateFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	return f, nil
}

// WriteFile creates path and fills it with write.
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := CreateFile(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
