package services

import (
	"encoding/json"
	"strings"

	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

// ProfileView is the frontend-facing reconstruction of a class profile's
// current state. Every key is always present: clients render it directly
// and a missing key is worse than an empty one.
type ProfileView struct {
	GeneratedProfile     string                 `json:"generatedProfile"`
	DesignConsiderations map[string]interface{} `json:"designConsiderations"`
	DisciplineInfo       DisciplineInfoView     `json:"disciplineInfo"`
	CourseInfo           CourseInfoView         `json:"courseInfo"`
	ClassInfo            ClassInfoView          `json:"classInfo"`
}

type DisciplineInfoView struct {
	DisciplineName        string `json:"disciplineName"`
	DisciplineDescription string `json:"disciplineDescription"`
}

type CourseInfoView struct {
	CourseName        string `json:"courseName"`
	CourseDescription string `json:"courseDescription"`
	CourseLevel       string `json:"courseLevel"`
}

type ClassInfoView struct {
	ClassSize          string   `json:"classSize"`
	ClassDuration      string   `json:"classDuration"`
	PriorKnowledge     string   `json:"priorKnowledge"`
	LearningChallenges []string `json:"learningChallenges"`
}

// ClassInputSource lazily supplies the structural fallback document
// (course basic info) for a profile's course. A nil source means no course
// context; a source returning nil means the course has no basic info yet.
type ClassInputSource func() *types.ClassInput

// Ordered paragraph sections recognized inside a structured
// generated-profile object. Unknown keys are ignored.
var profileSections = []struct {
	key   string
	label string
}{
	{"overview", "Overview"},
	{"teaching_approach", "Teaching Approach"},
	{"engagement_plan", "Engagement Plan"},
	{"assessment_strategy", "Assessment Strategy"},
}

// BuildProfileView reconstructs the frontend profile from the current
// version's content blob, the metadata side-channel, and the structural
// fallback source. It never fails: malformed input degrades to a partial
// view with every key still populated.
func BuildProfileView(content string, meta *types.ProfileMetadata, fallback ClassInputSource) ProfileView {
	view := emptyProfileView()

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		fillStructural(&view, nil, fallback)
		return view
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		view.GeneratedProfile = content
		fillStructural(&view, nil, fallback)
		return view
	}
	dict, ok := parsed.(map[string]interface{})
	if !ok {
		// Parseable but not an object: a bare string or number is opaque
		// display text, same as unparseable content.
		view.GeneratedProfile = content
		fillStructural(&view, nil, fallback)
		return view
	}

	view.GeneratedProfile = deriveGeneratedProfile(dict, content)
	embedded := extractClassInput(dict["class_input"])
	view.DesignConsiderations = resolveDesignConsiderations(meta, embedded)
	fillStructural(&view, embedded, fallback)
	return view
}

func emptyProfileView() ProfileView {
	return ProfileView{
		DesignConsiderations: map[string]interface{}{},
		ClassInfo:            ClassInfoView{LearningChallenges: []string{}},
	}
}

func deriveGeneratedProfile(dict map[string]interface{}, raw string) string {
	if sub, ok := dict["generated_profile"].(map[string]interface{}); ok {
		if text := concatSections(sub); text != "" {
			return text
		}
	}
	if s, ok := dict["profile"].(string); ok && s != "" {
		return s
	}
	if s, ok := dict["text"].(string); ok && s != "" {
		return s
	}
	return raw
}

func concatSections(sub map[string]interface{}) string {
	var parts []string
	for _, section := range profileSections {
		s, ok := sub[section.key].(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		parts = append(parts, section.label+":\n"+s)
	}
	return strings.Join(parts, "\n\n")
}

// resolveDesignConsiderations applies the side-channel precedence: the
// metadata's own design_consideration field, then the content-embedded
// class_input.design_considerations, then the metadata's nested
// class_input.design_considerations. First non-empty wins; an empty dict
// from an earlier source never shadows a populated later one.
func resolveDesignConsiderations(meta *types.ProfileMetadata, embedded *types.ClassInput) map[string]interface{} {
	if meta != nil && len(meta.DesignConsideration) > 0 {
		return meta.DesignConsideration
	}
	if embedded != nil && len(embedded.DesignConsiderations) > 0 {
		return embedded.DesignConsiderations
	}
	if meta != nil && meta.ClassInput != nil && len(meta.ClassInput.DesignConsiderations) > 0 {
		return meta.ClassInput.DesignConsiderations
	}
	return map[string]interface{}{}
}

// fillStructural resolves the discipline/course/class sub-sections from
// the content-embedded class_input when present, else from the external
// fallback source. Absent sections stay fully keyed with empty values.
func fillStructural(view *ProfileView, embedded *types.ClassInput, fallback ClassInputSource) {
	source := embedded
	if source == nil && fallback != nil {
		source = fallback()
	}
	if source == nil {
		return
	}
	if di := source.DisciplineInfo; di != nil {
		view.DisciplineInfo = DisciplineInfoView{
			DisciplineName:        di.DisciplineName.String(),
			DisciplineDescription: di.DisciplineDescription.String(),
		}
	}
	if ci := source.CourseInfo; ci != nil {
		view.CourseInfo = CourseInfoView{
			CourseName:        ci.CourseName.String(),
			CourseDescription: ci.CourseDescription.String(),
			CourseLevel:       ci.CourseLevel.String(),
		}
	}
	if ci := source.ClassInfo; ci != nil {
		challenges := []string(ci.LearningChallenges)
		if challenges == nil {
			challenges = []string{}
		}
		view.ClassInfo = ClassInfoView{
			ClassSize:          ci.ClassSize.String(),
			ClassDuration:      ci.ClassDuration.String(),
			PriorKnowledge:     ci.PriorKnowledge.String(),
			LearningChallenges: challenges,
		}
	}
}

// extractClassInput re-decodes an untyped class_input sub-object into the
// typed document. Anything that does not look like an object yields nil.
func extractClassInput(raw interface{}) *types.ClassInput {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	buf, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	var input types.ClassInput
	if err := json.Unmarshal(buf, &input); err != nil {
		return nil
	}
	return &input
}
