package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/steward/internal/capability"
)

// sharedKeywordThreshold is how many keywords two capabilities must share
// before they are flagged as likely duplicates.
const sharedKeywordThreshold = 3

// DuplicatePair is two capabilities that look like the same thing.
type DuplicatePair struct {
	A      string
	B      string
	Reason string
}

// FindDuplicates flags capability pairs whose normalized ids collide or
// whose keyword sets overlap heavily. Advisory only: nothing is merged or
// removed automatically.
func (d *Doctor) FindDuplicates() ([]DuplicatePair, error) {
	infos, err := d.capabilities.List()
	if err != nil {
		return nil, err
	}

	var pairs []DuplicatePair
	for i := 0; i < len(infos); i++ {
		for j := i + 1; j < len(infos); j++ {
			a, b := infos[i], infos[j]
			if capability.NormalizeName(a.ID) == capability.NormalizeName(b.ID) {
				pairs = append(pairs, DuplicatePair{
					A: a.ID, B: b.ID,
					Reason: "names differ only in case or separators",
				})
				continue
			}
			if shared := sharedKeywords(a.Keywords, b.Keywords); len(shared) >= sharedKeywordThreshold {
				pairs = append(pairs, DuplicatePair{
					A: a.ID, B: b.ID,
					Reason: fmt.Sprintf("share %d keywords: %s", len(shared), strings.Join(shared, ", ")),
				})
			}
		}
	}
	return pairs, nil
}

func sharedKeywords(a, b []string) []string {
	set := map[string]bool{}
	for _, kw := range a {
		set[strings.ToLower(kw)] = true
	}
	var shared []string
	seen := map[string]bool{}
	for _, kw := range b {
		lower := strings.ToLower(kw)
		if set[lower] && !seen[lower] {
			shared = append(shared, lower)
			seen[lower] = true
		}
	}
	return shared
}

// DirStats summarizes one capability directory for comparison.
type DirStats struct {
	Path         string
	Files        int
	Bytes        int64
	MaxDepth     int
	HasReadme    bool
	HasTests     bool
	LastModified time.Time
}

// Comparison is the advisory result of comparing two capability
// directories.
type Comparison struct {
	A, B           DirStats
	Recommendation string
}

// CompareDirs gathers file statistics for two capability directories and
// recommends which to keep. The recommendation weighs content volume and
// organization; the operator makes the call.
func (d *Doctor) CompareDirs(idA, idB string) (*Comparison, error) {
	a, err := statDir(filepath.Join(d.paths.CapabilitiesDir(), idA))
	if err != nil {
		return nil, err
	}
	b, err := statDir(filepath.Join(d.paths.CapabilitiesDir(), idB))
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{A: a, B: b}
	scoreA, scoreB := score(a), score(b)
	// Recency breaks near-ties: the directory touched more recently is
	// more likely the one still in use.
	if a.LastModified.After(b.LastModified) {
		scoreA += 50
	} else if b.LastModified.After(a.LastModified) {
		scoreB += 50
	}
	switch {
	case scoreA > scoreB:
		cmp.Recommendation = fmt.Sprintf("keep %q: more content and better organized", idA)
	case scoreB > scoreA:
		cmp.Recommendation = fmt.Sprintf("keep %q: more content and better organized", idB)
	default:
		cmp.Recommendation = "no clear winner; inspect both by hand"
	}
	return cmp, nil
}

func statDir(dir string) (DirStats, error) {
	stats := DirStats{Path: dir}
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if strings.EqualFold(entry.Name(), "tests") {
				stats.HasTests = true
			}
			rel, relErr := filepath.Rel(dir, path)
			if relErr == nil && rel != "." {
				depth := strings.Count(rel, string(filepath.Separator)) + 1
				if depth > stats.MaxDepth {
					stats.MaxDepth = depth
				}
			}
			return nil
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			return infoErr
		}
		stats.Files++
		stats.Bytes += info.Size()
		if info.ModTime().After(stats.LastModified) {
			stats.LastModified = info.ModTime()
		}
		if strings.EqualFold(entry.Name(), "README.md") {
			stats.HasReadme = true
		}
		return nil
	})
	return stats, err
}

// score folds a directory's stats into one comparable number. File count
// dominates, bytes break ties, a readme, a tests directory, and nesting
// suggest deliberate organization.
func score(s DirStats) int64 {
	v := int64(s.Files)*1000 + s.Bytes/1024
	if s.HasReadme {
		v += 500
	}
	if s.HasTests {
		v += 300
	}
	v += int64(s.MaxDepth) * 100
	return v
}
