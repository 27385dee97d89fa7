package entity

// Skill is a row of the canonical skill catalog.
type Skill struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Names returns the catalog names in order.
func Names(skills []Skill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.Name)
	}
	return out
}

// CVKeywords is the persisted cross-reference between a CV and its resolved skills.
type CVKeywords struct {
	CVID   int64    `json:"cv_id"`
	Skills []string `json:"skills"`
}
