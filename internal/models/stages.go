package models

// Stage is one named phase of the physical cleaning process with its
// estimated duration in minutes of model time.
type Stage struct {
	ID      string
	Label   string
	Minutes int
}

const (
	StagePrewash   = "prewash"
	StageMainWash  = "mainWash"
	StageRinse     = "rinse"
	StageWaxing    = "waxing"
	StageDetailing = "detailing"
	StageDrying    = "drying"
)

// CleaningStages is the fixed ordered stage vocabulary. The order matters for
// the simulated tracker; the manual tracker treats it as a plain set.
var CleaningStages = []Stage{
	{ID: StagePrewash, Label: "Prewash", Minutes: 15},
	{ID: StageMainWash, Label: "Main Wash", Minutes: 20},
	{ID: StageRinse, Label: "Rinse", Minutes: 10},
	{ID: StageWaxing, Label: "Waxing", Minutes: 15},
	{ID: StageDetailing, Label: "Detailing", Minutes: 25},
	{ID: StageDrying, Label: "Drying", Minutes: 15},
}

// StageByID resolves a stage id against the vocabulary.
func StageByID(id string) (Stage, bool) {
	for _, s := range CleaningStages {
		if s.ID == id {
			return s, true
		}
	}
	return Stage{}, false
}

// ValidStageID reports whether the id belongs to the fixed vocabulary.
func ValidStageID(id string) bool {
	_, ok := StageByID(id)
	return ok
}
