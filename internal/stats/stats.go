// Package stats turns stored game records into the analytics report shown by
// the stats command and the HTTP API.
package stats

import (
	"math"
	"slices"
	"time"

	"github.com/kamstrup/intmap"

	"github.com/vovakirdan/tui-tetris/internal/storage"
	"github.com/vovakirdan/tui-tetris/internal/tetris"
)

// Range limits the records considered for trends.
type Range string

const (
	RangeDay   Range = "day"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeAll   Range = "all"
)

// ParseRange validates a range name. Unknown names mean RangeWeek.
func ParseRange(s string) Range {
	switch r := Range(s); r {
	case RangeDay, RangeWeek, RangeMonth, RangeAll:
		return r
	default:
		return RangeWeek
	}
}

func (r Range) cutoff(now time.Time) time.Time {
	switch r {
	case RangeDay:
		return now.Add(-24 * time.Hour)
	case RangeWeek:
		return now.Add(-7 * 24 * time.Hour)
	case RangeMonth:
		return now.Add(-30 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

// Basic holds totals and averages over every record.
type Basic struct {
	Games         int `json:"games"`
	TotalScore    int `json:"totalScore"`
	AverageScore  int `json:"averageScore"`
	BestScore     int `json:"bestScore"`
	TotalLines    int `json:"totalLines"`
	AverageLines  int `json:"averageLines"`
	MaxLevel      int `json:"maxLevel"`
	TotalPlayMs   int `json:"totalPlayMs"`
	AveragePlayMs int `json:"averagePlayMs"`
}

// PieceUsage is the share of one piece type across all games.
type PieceUsage struct {
	Piece      tetris.PieceType `json:"piece"`
	Count      int              `json:"count"`
	Percentage int              `json:"percentage"`
}

// Bucket is one slice of the play-time distribution.
type Bucket struct {
	Label string `json:"label"`
	Games int    `json:"games"`
}

// ModeSummary aggregates the records of one mode.
type ModeSummary struct {
	Mode         string `json:"mode"`
	Games        int    `json:"games"`
	BestScore    int    `json:"bestScore"`
	AverageScore int    `json:"averageScore"`
	BestTimeMs   int    `json:"bestTimeMs,omitempty"` // fastest completed run
}

// Best is a record value with the date it was set.
type Best struct {
	Value int       `json:"value"`
	At    time.Time `json:"at"`
}

// Bests lists personal records.
type Bests struct {
	Score    Best `json:"score"`
	Lines    Best `json:"lines"`
	Level    Best `json:"level"`
	Duration Best `json:"duration"`
	Combo    Best `json:"combo"`
}

// TrendPoint averages the games of one day.
type TrendPoint struct {
	Date       string `json:"date"` // YYYY-MM-DD, UTC
	Games      int    `json:"games"`
	Score      int    `json:"score"`
	Lines      int    `json:"lines"`
	Level      int    `json:"level"`
	DurationMs int    `json:"durationMs"`
}

// Change is the percentage change between the last two trend points.
type Change struct {
	Score    int `json:"score"`
	Lines    int `json:"lines"`
	Level    int `json:"level"`
	Duration int `json:"duration"`
}

// Trends is the per-day series for a range.
type Trends struct {
	Range  Range        `json:"range"`
	Points []TrendPoint `json:"points"`
	Change Change       `json:"change"`
}

// Report is the full analytics view. It is the zero value when there are no
// records.
type Report struct {
	Basic    Basic              `json:"basic"`
	Pieces   []PieceUsage       `json:"pieces"`
	Clears   tetris.ClearCounts `json:"clears"`
	Duration []Bucket           `json:"duration"`
	Modes    []ModeSummary      `json:"modes"`
	Bests    Bests              `json:"bests"`
	Trends   Trends             `json:"trends"`
}

// Analyze builds a report from records, with trends over r relative to now.
func Analyze(records []storage.GameRecord, r Range, now time.Time) Report {
	if len(records) == 0 {
		return Report{Trends: Trends{Range: r}}
	}
	return Report{
		Basic:    basicStats(records),
		Pieces:   pieceUsage(records),
		Clears:   clearPatterns(records),
		Duration: durationDistribution(records),
		Modes:    modeSummaries(records),
		Bests:    bests(records),
		Trends:   trends(records, r, now),
	}
}

func avg(total, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
}

func basicStats(records []storage.GameRecord) Basic {
	b := Basic{Games: len(records)}
	for _, r := range records {
		b.TotalScore += r.Score
		b.BestScore = max(b.BestScore, r.Score)
		b.TotalLines += r.Lines
		b.MaxLevel = max(b.MaxLevel, r.Level)
		b.TotalPlayMs += r.DurationMs
	}
	b.AverageScore = avg(b.TotalScore, b.Games)
	b.AverageLines = avg(b.TotalLines, b.Games)
	b.AveragePlayMs = avg(b.TotalPlayMs, b.Games)
	return b
}

func pieceUsage(records []storage.GameRecord) []PieceUsage {
	counts := intmap.New[tetris.PieceType, int](len(tetris.AllPieces))
	total := 0
	for _, r := range records {
		for _, p := range tetris.AllPieces {
			n := r.Stats.PieceStats[p]
			if n == 0 {
				continue
			}
			c, _ := counts.Get(p)
			counts.Put(p, c+n)
			total += n
		}
	}

	out := make([]PieceUsage, 0, len(tetris.AllPieces))
	for _, p := range tetris.AllPieces {
		c, _ := counts.Get(p)
		u := PieceUsage{Piece: p, Count: c}
		if total > 0 {
			u.Percentage = int(math.Round(float64(c) * 100 / float64(total)))
		}
		out = append(out, u)
	}
	return out
}

func clearPatterns(records []storage.GameRecord) tetris.ClearCounts {
	var cc tetris.ClearCounts
	for _, r := range records {
		c := r.Stats.ClearCounts
		cc.Single += c.Single
		cc.Double += c.Double
		cc.Triple += c.Triple
		cc.Tetris += c.Tetris
		cc.TSpin += c.TSpin
		cc.PerfectClear += c.PerfectClear
	}
	return cc
}

// bucketLabels are the play-time buckets, by upper bound in whole minutes.
var bucketLabels = []struct {
	label string
	below int
}{
	{"<1min", 1},
	{"1-3min", 3},
	{"3-5min", 5},
	{"5-10min", 10},
	{"10-20min", 20},
	{">20min", math.MaxInt},
}

func durationDistribution(records []storage.GameRecord) []Bucket {
	counts := intmap.New[int, int](len(bucketLabels))
	for _, r := range records {
		minutes := r.DurationMs / 60000
		for i, b := range bucketLabels {
			if minutes < b.below {
				n, _ := counts.Get(i)
				counts.Put(i, n+1)
				break
			}
		}
	}

	out := make([]Bucket, len(bucketLabels))
	for i, b := range bucketLabels {
		n, _ := counts.Get(i)
		out[i] = Bucket{Label: b.label, Games: n}
	}
	return out
}

func modeSummaries(records []storage.GameRecord) []ModeSummary {
	byMode := map[string]*ModeSummary{}
	totals := map[string]int{}
	for _, r := range records {
		m, ok := byMode[r.Mode]
		if !ok {
			m = &ModeSummary{Mode: r.Mode}
			byMode[r.Mode] = m
		}
		m.Games++
		m.BestScore = max(m.BestScore, r.Score)
		totals[r.Mode] += r.Score
		if r.Reason == tetris.EndCompleted && (m.BestTimeMs == 0 || r.DurationMs < m.BestTimeMs) {
			m.BestTimeMs = r.DurationMs
		}
	}

	out := make([]ModeSummary, 0, len(byMode))
	for mode, m := range byMode {
		m.AverageScore = avg(totals[mode], m.Games)
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b ModeSummary) int {
		if a.Games != b.Games {
			return b.Games - a.Games
		}
		if a.Mode < b.Mode {
			return -1
		}
		if a.Mode > b.Mode {
			return 1
		}
		return 0
	})
	return out
}

func bests(records []storage.GameRecord) Bests {
	var b Bests
	first := true
	better := func(cur *Best, v int, at time.Time) {
		if first || v > cur.Value {
			*cur = Best{Value: v, At: at}
		}
	}
	for _, r := range records {
		better(&b.Score, r.Score, r.CreatedAt)
		better(&b.Lines, r.Lines, r.CreatedAt)
		better(&b.Level, r.Level, r.CreatedAt)
		better(&b.Duration, r.DurationMs, r.CreatedAt)
		better(&b.Combo, r.Stats.MaxCombo, r.CreatedAt)
		first = false
	}
	return b
}

type dayAgg struct {
	games, score, lines, level, duration int
}

func trends(records []storage.GameRecord, rng Range, now time.Time) Trends {
	cutoff := rng.cutoff(now)
	days := intmap.New[int64, *dayAgg](16)
	var keys []int64

	for _, r := range records {
		if !r.CreatedAt.After(cutoff) {
			continue
		}
		day := r.CreatedAt.UTC().Unix() / 86400
		agg, ok := days.Get(day)
		if !ok {
			agg = &dayAgg{}
			days.Put(day, agg)
			keys = append(keys, day)
		}
		agg.games++
		agg.score += r.Score
		agg.lines += r.Lines
		agg.level += r.Level
		agg.duration += r.DurationMs
	}
	slices.Sort(keys)

	t := Trends{Range: rng, Points: make([]TrendPoint, 0, len(keys))}
	for _, k := range keys {
		agg, _ := days.Get(k)
		t.Points = append(t.Points, TrendPoint{
			Date:       time.Unix(k*86400, 0).UTC().Format(time.DateOnly),
			Games:      agg.games,
			Score:      avg(agg.score, agg.games),
			Lines:      avg(agg.lines, agg.games),
			Level:      avg(agg.level, agg.games),
			DurationMs: avg(agg.duration, agg.games),
		})
	}

	if n := len(t.Points); n >= 2 {
		cur, prev := t.Points[n-1], t.Points[n-2]
		t.Change = Change{
			Score:    changeRate(prev.Score, cur.Score),
			Lines:    changeRate(prev.Lines, cur.Lines),
			Level:    changeRate(prev.Level, cur.Level),
			Duration: changeRate(prev.DurationMs, cur.DurationMs),
		}
	}
	return t
}

// changeRate is the rounded percentage change from prev to cur, 0 when prev is 0.
func changeRate(prev, cur int) int {
	if prev == 0 {
		return 0
	}
	return int(math.Round(float64(cur-prev) * 100 / float64(prev)))
}
