package reports

// Facade exports to every format at once and serves the external leaderboard.
type Facade struct {
	exporters []Exporter
	ranking   *RankingAdapter
}

func NewFacade(external ExternalRanking) *Facade {
	return &Facade{
		exporters: []Exporter{CSVExporter{}, JSONExporter{}, TextExporter{}},
		ranking:   NewRankingAdapter(external),
	}
}

// ExportAll writes base.<format> for each exporter and returns format -> absolute path.
// It stops at the first failure.
func (f *Facade) ExportAll(base string, rows []Row) (map[string]string, error) {
	paths := make(map[string]string, len(f.exporters))
	for _, e := range f.exporters {
		p, err := e.Export(base+"."+e.Format(), rows)
		if err != nil {
			return paths, err
		}
		paths[e.Format()] = p
	}
	return paths, nil
}

// Leaderboard returns the adapted external top list.
func (f *Facade) Leaderboard(limit int) []Entry {
	return f.ranking.Top(limit)
}
