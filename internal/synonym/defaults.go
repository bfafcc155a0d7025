package synonym

// defaultPhrases maps natural-language phrases an LLM tends to emit to canonical tags.
// Comma-separated values fan out into several independently matched tags.
var defaultPhrases = map[string]string{
	"naked":            "nude",
	"fully naked":      "nude",
	"completely naked": "nude",
	"nude body":        "nude",

	"blonde":        "blonde_hair",
	"blonde haired": "blonde_hair",
	"blond":         "blonde_hair",
	"brunette":      "brown_hair",
	"redhead":       "red_hair",
	"red haired":    "red_hair",
	"ginger":        "red_hair",
	"silver haired": "silver_hair",
	"white haired":  "white_hair",
	"black haired":  "black_hair",
	"pink haired":   "pink_hair",
	"blue haired":   "blue_hair",
	"green haired":  "green_hair",
	"purple haired": "purple_hair",

	"short":              "short_hair",
	"long":               "long_hair",
	"medium length hair": "medium_hair",
	"very long":          "very_long_hair",

	"big breasts":    "large_breasts",
	"huge breasts":   "huge_breasts",
	"small breasts":  "flat_chest",
	"flat chest":     "flat_chest",
	"tiny breasts":   "flat_chest",
	"medium breasts": "medium_breasts",

	"duo":            "1boy, 1girl",
	"couple":         "1boy, 1girl",
	"solo female":    "1girl",
	"solo male":      "1boy",
	"single girl":    "1girl",
	"single boy":     "1boy",
	"two girls":      "2girls",
	"two boys":       "2boys",
	"three girls":    "3girls",
	"multiple girls": "multiple_girls",

	"smiling":     "smile",
	"happy":       "smile",
	"crying":      "tears",
	"angry":       "angry",
	"surprised":   "surprised",
	"shocked":     "surprised",
	"embarrassed": "blush",
	"blushing":    "blush",
	"nervous":     "sweat",

	"standing up":  "standing",
	"sitting down": "sitting",
	"lying":        "lying",
	"laying down":  "lying",
	"kneeling":     "kneeling",
	"squatting":    "squatting",
	"bent over":    "bent_over",
	"from behind":  "from_behind",
	"from front":   "from_front",

	"looking at viewer":   "looking_at_viewer",
	"looking at camera":   "looking_at_viewer",
	"looking away":        "looking_away",
	"looking to the side": "looking_to_the_side",
	"looking back":        "looking_back",
	"looking down":        "looking_down",
	"looking up":          "looking_up",
	"closed eyes":         "closed_eyes",
	"half closed eyes":    "half-closed_eyes",

	"school uniform":     "school_uniform",
	"sailor uniform":     "serafuku",
	"maid outfit":        "maid",
	"maid costume":       "maid",
	"bikini swimsuit":    "bikini",
	"one piece swimsuit": "one-piece_swimsuit",
	"dress":              "dress",
	"wedding dress":      "wedding_dress",
	"lingerie":           "lingerie",
	"underwear":          "underwear",
	"panties":            "panties",
	"thong":              "thong",

	"outdoor":     "outdoors",
	"indoor":      "indoors",
	"at night":    "night",
	"at day":      "day",
	"daytime":     "day",
	"nighttime":   "night",
	"in bedroom":  "bedroom",
	"in bathroom": "bathroom",
	"at school":   "school",
	"at beach":    "beach",
	"in forest":   "forest",
	"in city":     "city",

	"high quality":    "highres",
	"best quality":    "best_quality",
	"masterpiece":     "masterpiece",
	"detailed":        "detailed",
	"highly detailed": "detailed",

	"close up":   "close-up",
	"closeup":    "close-up",
	"full body":  "full_body",
	"upper body": "upper_body",
	"lower body": "lower_body",
	"portrait":   "portrait",
	"face only":  "face",
	"face focus": "face",
}
