package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
)

var (
	csvFile string
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file containing rows of title, penalty, max penetration")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	f, err := os.Open(csvFile)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	studies, err := readCSV(f)
	if err != nil {
		panic(err)
	}
	titles := make([]string, 0, len(studies))
	for title := range studies {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		ps := studies[title]
		fmt.Printf("Title = %s\n", ps.title)
		orders := ps.Orders()
		for i := range ps.penalty {
			if i == 0 {
				fmt.Printf("%12.4e, %12.4e\n", ps.penalty[i], ps.penetration[i])
				continue
			}
			fmt.Printf("%12.4e, %12.4e, order = %6.3f\n", ps.penalty[i], ps.penetration[i], orders[i-1])
		}
	}
}

// PenaltyStudy is the max penetration of one contact problem over a sequence of penalty parameters
type PenaltyStudy struct {
	title       string
	penalty     []float64
	penetration []float64
}

func NewPenaltyStudy(title string) *PenaltyStudy {
	return &PenaltyStudy{
		title: title,
	}
}

func (ps *PenaltyStudy) Add(penalty, penetration float64) {
	ps.penalty = append(ps.penalty, penalty)
	ps.penetration = append(ps.penetration, math.Abs(penetration))
}

func (ps *PenaltyStudy) Len() int           { return len(ps.penalty) }
func (ps *PenaltyStudy) Less(i, j int) bool { return ps.penalty[i] < ps.penalty[j] }
func (ps *PenaltyStudy) Swap(i, j int) {
	ps.penalty[i], ps.penalty[j] = ps.penalty[j], ps.penalty[i]
	ps.penetration[i], ps.penetration[j] = ps.penetration[j], ps.penetration[i]
}

// Orders returns the observed exponent q of penetration ~ penalty^-q between consecutive rows
func (ps *PenaltyStudy) Orders() (q []float64) {
	sort.Sort(ps)
	for i := 1; i < len(ps.penalty); i++ {
		q = append(q, math.Log(ps.penetration[i-1]/ps.penetration[i])/math.Log(ps.penalty[i]/ps.penalty[i-1]))
	}
	return
}

func readCSV(rd io.Reader) (studies map[string]*PenaltyStudy, err error) {
	var (
		records [][]string
		ok      bool
		ps      *PenaltyStudy
		pp, pen float64
	)
	studies = make(map[string]*PenaltyStudy)
	r := csv.NewReader(bufio.NewReader(rd))
	if records, err = r.ReadAll(); err != nil {
		return
	}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("line %d: need title, penalty and penetration, have %d fields", i+1, len(rec))
		}
		title := rec[0]
		if pp, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if pen, err = strconv.ParseFloat(rec[2], 64); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if !(pp > 0) {
			return nil, fmt.Errorf("line %d: penalty %g not positive", i+1, pp)
		}
		if ps, ok = studies[title]; !ok {
			ps = NewPenaltyStudy(title)
			studies[title] = ps
		}
		ps.Add(pp, pen)
	}
	return
}
