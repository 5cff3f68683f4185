package climb

// Category is a race-style climb rating
type Category string

const (
	CategoryHC Category = "HC"
	Category1  Category = "1"
	Category2  Category = "2"
	Category3  Category = "3"
	Category4  Category = "4"
)

// Score thresholds, exclusive
const (
	scoreHC = 80000
	score1  = 32000
	score2  = 16000
	score3  = 8000
)

// Categorize rates a climb by gain (metres) times length (kilometres).
// The mixed units are intentional: the thresholds were tuned against this
// product and converting length to metres would shift every boundary.
func Categorize(elevationGainM, lengthKM float64) Category {
	score := elevationGainM * lengthKM
	switch {
	case score > scoreHC:
		return CategoryHC
	case score > score1:
		return Category1
	case score > score2:
		return Category2
	case score > score3:
		return Category3
	default:
		return Category4
	}
}
