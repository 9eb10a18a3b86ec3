package api

// Label vocabularies served by /api/config and enforced by the move and
// frame-tag handlers. The slugs are stable identifiers; renaming one
// breaks previously exported datasets.

// MoveTypes is the closed set of move classifications.
var MoveTypes = []string{
	"static",
	"lock_off",
	"dyno",
	"deadpoint",
	"mantle",
	"drop_knee",
}

// Question is one contextual questionnaire entry for a move type. The
// answers land in a move's contextual_data keyed by question ID.
type Question struct {
	Prompt      string   `json:"question"`
	Options     []string `json:"options"`
	MultiSelect bool     `json:"multi_select,omitempty"`
}

// contactOptions is the shared answer set for contact-point questions.
var contactOptions = []string{"left_hand", "right_hand", "left_foot", "right_foot"}

// MoveTypeQuestions maps each move type to its contextual questions,
// keyed by question ID.
var MoveTypeQuestions = map[string]map[string]Question{
	"dyno": {
		"catching_hand": {
			Prompt:  "Which hand caught the target hold?",
			Options: []string{"left_hand", "right_hand", "both_hands", "missed"},
		},
		"push_foot": {
			Prompt:  "Which foot pushed off?",
			Options: []string{"left_foot", "right_foot", "both_feet"},
		},
		"contact_at_launch": {
			Prompt:      "Contact points at launch",
			Options:     contactOptions,
			MultiSelect: true,
		},
		"body_position": {
			Prompt:  "Body position",
			Options: []string{"square", "side_on", "turned_away"},
		},
	},
	"lock_off": {
		"lock_off_arm": {
			Prompt:  "Which arm was the lock-off on?",
			Options: []string{"left_arm", "right_arm", "both_arms"},
		},
		"contact_points": {
			Prompt:      "Contact points during lock-off",
			Options:     contactOptions,
			MultiSelect: true,
		},
		"hold_duration": {
			Prompt:  "How long held (estimate)",
			Options: []string{"<1sec", "1-3sec", "3-5sec", ">5sec"},
		},
	},
	"drop_knee": {
		"dropped_knee": {
			Prompt:  "Which knee dropped?",
			Options: []string{"left_knee", "right_knee"},
		},
		"hip_rotation": {
			Prompt:  "Hip rotation",
			Options: []string{"internal", "external", "neutral"},
		},
		"contact_points": {
			Prompt:      "Contact points",
			Options:     contactOptions,
			MultiSelect: true,
		},
	},
	"static": {
		"reaching_hand": {
			Prompt:  "Which hand reached?",
			Options: []string{"left_hand", "right_hand", "both_hands"},
		},
		"supporting_leg": {
			Prompt:  "Supporting leg",
			Options: []string{"left_foot", "right_foot", "both_feet"},
		},
		"other_leg_position": {
			Prompt:  "Other leg position",
			Options: []string{"on_hold", "flagged_left", "flagged_right", "dangling"},
		},
		"contact_points": {
			Prompt:      "Contact points",
			Options:     contactOptions,
			MultiSelect: true,
		},
	},
	"deadpoint": {
		"reaching_hand": {
			Prompt:  "Which hand reached?",
			Options: []string{"left_hand", "right_hand", "both_hands"},
		},
		"push_foot": {
			Prompt:  "Push foot",
			Options: []string{"left_foot", "right_foot", "both_feet"},
		},
		"contact_at_peak": {
			Prompt:      "Contact at peak",
			Options:     contactOptions,
			MultiSelect: true,
		},
	},
	"mantle": {
		"mantle_side": {
			Prompt:  "Which side mantled first?",
			Options: []string{"left_side", "right_side", "both_together"},
		},
		"starting_position": {
			Prompt:  "Starting position",
			Options: []string{"below_hold", "level_with_hold", "above_hold"},
		},
		"contact_at_top": {
			Prompt:      "Contact points at top",
			Options:     []string{"left_hand", "right_hand", "left_knee", "right_knee"},
			MultiSelect: true,
		},
	},
}

// BodyParts are the locations selectable on sensation frame tags.
var BodyParts = []string{
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
	"lower_back", "upper_back",
	"core", "forearms",
}

// TagTypes maps frame-tag slugs to display names.
var TagTypes = map[string]string{
	"sharp_pain":        "Sharp Pain",
	"dull_pain":         "Dull Pain",
	"pop":               "Pop",
	"unstable":          "Unstable",
	"stretch_awkward":   "Stretch/Awkward",
	"strong_controlled": "Strong/Controlled",
	"weak":              "Weak",
	"pumped":            "Pumped",
	"fatigue":           "Fatigue",
}

// Rating scale bounds.
const (
	FormQualityMin = 1
	FormQualityMax = 5
	EffortLevelMin = 0
	EffortLevelMax = 10
	TagLevelMin    = 0
	TagLevelMax    = 10
)

// isValidMoveType checks membership in the move type vocabulary.
func isValidMoveType(moveType string) bool {
	for _, t := range MoveTypes {
		if t == moveType {
			return true
		}
	}
	return false
}

// isValidTagType checks membership in the frame-tag vocabulary.
func isValidTagType(tagType string) bool {
	_, ok := TagTypes[tagType]
	return ok
}
