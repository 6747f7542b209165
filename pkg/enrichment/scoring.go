package enrichment

// Relevance tiers for ranking POIs around a checkpoint. A passenger at
// altitude cares about a national park below far more than an unnamed pond.
const (
	scoreNationalPark  = 100
	scoreMountainRange = 80
	scorePeak          = 70
	scoreAttraction    = 50
	scoreWater         = 40
	scoreNamedFeature  = 10
)

type scoredPOI struct {
	name     string
	poiType  string
	category string
	score    int
}

func scorePOI(element POIElement) (scoredPOI, bool) {
	name := element.Tags["name"]
	if name == "" {
		return scoredPOI{}, false
	}

	switch {
	case element.Tags["boundary"] == "national_park" || element.Tags["leisure"] == "national_park":
		return scoredPOI{name, "national_park", "park", scoreNationalPark}, true

	case element.Tags["natural"] == "mountain_range" || element.Tags["natural"] == "ridge":
		return scoredPOI{name, element.Tags["natural"], "mountains", scoreMountainRange}, true

	case element.Tags["natural"] == "peak" || element.Tags["natural"] == "volcano":
		return scoredPOI{name, element.Tags["natural"], "mountains", scorePeak}, true

	case element.Tags["tourism"] == "attraction":
		return scoredPOI{name, "attraction", "attraction", scoreAttraction}, true

	case element.Tags["natural"] == "water" || element.Tags["natural"] == "bay" || element.Tags["water"] != "":
		return scoredPOI{name, "water", "water", scoreWater}, true

	default:
		return scoredPOI{name, firstTagValue(element.Tags), "feature", scoreNamedFeature}, true
	}
}

func firstTagValue(tags map[string]string) string {
	for _, key := range []string{"natural", "landuse", "place", "historic"} {
		if tags[key] != "" {
			return tags[key]
		}
	}
	return "feature"
}

// rankPOIs returns the scored POIs best-first, capped at max.
func rankPOIs(elements []POIElement, max int) []scoredPOI {
	var scored []scoredPOI
	for _, element := range elements {
		if s, ok := scorePOI(element); ok {
			scored = append(scored, s)
		}
	}

	// Insertion sort keeps equal-score POIs in response order.
	for i := 1; i < len(scored); i++ {
		for j := i; j > 0 && scored[j].score > scored[j-1].score; j-- {
			scored[j], scored[j-1] = scored[j-1], scored[j]
		}
	}

	if len(scored) > max {
		scored = scored[:max]
	}
	return scored
}
