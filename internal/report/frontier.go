package report

import "github.com/MikeSquared-Agency/Appraise/internal/scoring"

// Frontier returns the records no other record beats on net score, edge
// fit (Raspberry Pi size score) and license at once. Input order is kept.
// O(n^2) dominance check.
func Frontier(records []scoring.ScoreRecord) []scoring.ScoreRecord {
	if len(records) <= 1 {
		return records
	}

	var frontier []scoring.ScoreRecord
	for i := range records {
		dominated := false
		for j := range records {
			if i != j && dominates(&records[j], &records[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, records[i])
		}
	}
	return frontier
}

// dominates reports whether a is at least as good as b everywhere and
// strictly better somewhere.
func dominates(a, b *scoring.ScoreRecord) bool {
	if a.NetScore < b.NetScore || a.SizeScore.RaspberryPi < b.SizeScore.RaspberryPi || a.License < b.License {
		return false
	}
	return a.NetScore > b.NetScore || a.SizeScore.RaspberryPi > b.SizeScore.RaspberryPi || a.License > b.License
}
