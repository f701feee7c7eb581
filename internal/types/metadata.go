package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ProfileMetadata is the structured side-channel stored in the metadata
// column of a class profile and its versions. Only the fields the view
// builder consults are modeled; unknown keys are dropped on re-marshal.
type ProfileMetadata struct {
	Profile             string                 `json:"profile,omitempty"`
	DesignConsideration map[string]interface{} `json:"design_consideration,omitempty"`
	DesignRationale     string                 `json:"design_rationale,omitempty"`
	ClassInput          *ClassInput            `json:"class_input,omitempty"`
}

// ClassInput is the structural discipline/course/class document. It is the
// content shape of CourseBasicInfo and may also appear embedded in a class
// profile's generated content.
type ClassInput struct {
	DisciplineInfo       *DisciplineInfoInput   `json:"discipline_info,omitempty"`
	CourseInfo           *CourseInfoInput       `json:"course_info,omitempty"`
	ClassInfo            *ClassInfoInput        `json:"class_info,omitempty"`
	DesignConsiderations map[string]interface{} `json:"design_considerations,omitempty"`
}

type DisciplineInfoInput struct {
	DisciplineName        FlexString `json:"discipline_name"`
	DisciplineDescription FlexString `json:"discipline_description"`
}

type CourseInfoInput struct {
	CourseName        FlexString `json:"course_name"`
	CourseDescription FlexString `json:"course_description"`
	CourseLevel       FlexString `json:"course_level"`
}

type ClassInfoInput struct {
	ClassSize          FlexString `json:"class_size"`
	ClassDuration      FlexString `json:"class_duration"`
	PriorKnowledge     FlexString `json:"prior_knowledge"`
	LearningChallenges StringList `json:"learning_challenges"`
}

// FlexString tolerates JSON strings and numbers in fields the upstream
// pipeline populates inconsistently.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}
	*f = ""
	return nil
}

func (f FlexString) String() string { return string(f) }

// StringList accepts a genuine JSON list or a delimiter-joined string.
// Both "||" and "," act as separators; entries are trimmed and empties
// dropped.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []interface{}
	if err := json.Unmarshal(data, &list); err == nil {
		out := make(StringList, 0, len(list))
		for _, item := range list {
			if str, ok := item.(string); ok {
				if trimmed := strings.TrimSpace(str); trimmed != "" {
					out = append(out, trimmed)
				}
			}
		}
		*s = out
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*s = SplitChallengeList(joined)
		return nil
	}
	*s = StringList{}
	return nil
}

// SplitChallengeList normalizes a delimiter-joined challenge string into a
// list of trimmed non-empty entries.
func SplitChallengeList(raw string) StringList {
	replaced := strings.ReplaceAll(raw, "||", ",")
	parts := strings.Split(replaced, ",")
	out := make(StringList, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
