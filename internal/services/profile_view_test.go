package services

import (
	"reflect"
	"testing"

	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

func physicsClassInput() *types.ClassInput {
	return &types.ClassInput{
		DisciplineInfo: &types.DisciplineInfoInput{
			DisciplineName:        "Physics",
			DisciplineDescription: "Study of matter and energy",
		},
		CourseInfo: &types.CourseInfoInput{
			CourseName:        "Introductory Mechanics",
			CourseDescription: "Forces, motion, and energy",
			CourseLevel:       "undergraduate",
		},
		ClassInfo: &types.ClassInfoInput{
			ClassSize:          "45",
			ClassDuration:      "75 minutes",
			PriorKnowledge:     "algebra and basic trigonometry",
			LearningChallenges: types.StringList{"math anxiety", "large class size"},
		},
	}
}

func TestBuildProfileViewMalformedContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unparseable", "this is {not json"},
		{"bare string", `"just a string"`},
		{"bare number", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := BuildProfileView(tt.content, nil, nil)
			if view.GeneratedProfile != tt.content {
				t.Fatalf("GeneratedProfile = %q, want raw content %q", view.GeneratedProfile, tt.content)
			}
			if view.DesignConsiderations == nil {
				t.Fatal("DesignConsiderations must never be nil")
			}
			if view.ClassInfo.LearningChallenges == nil {
				t.Fatal("LearningChallenges must never be nil")
			}
		})
	}
}

func TestBuildProfileViewEmptyContent(t *testing.T) {
	view := BuildProfileView("", nil, func() *types.ClassInput { return physicsClassInput() })
	if view.GeneratedProfile != "" {
		t.Fatalf("GeneratedProfile = %q, want empty", view.GeneratedProfile)
	}
	if view.DisciplineInfo.DisciplineName != "Physics" {
		t.Fatalf("DisciplineName = %q, want fallback value", view.DisciplineInfo.DisciplineName)
	}
	if view.CourseInfo.CourseLevel != "undergraduate" {
		t.Fatalf("CourseLevel = %q, want fallback value", view.CourseInfo.CourseLevel)
	}
}

func TestBuildProfileViewSectionConcatenation(t *testing.T) {
	content := `{
		"generated_profile": {
			"assessment_strategy": "Weekly quizzes.",
			"overview": "An active-learning mechanics course.",
			"teaching_approach": "Peer instruction.",
			"unknown_section": "ignored"
		}
	}`
	view := BuildProfileView(content, nil, nil)
	want := "Overview:\nAn active-learning mechanics course.\n\n" +
		"Teaching Approach:\nPeer instruction.\n\n" +
		"Assessment Strategy:\nWeekly quizzes."
	if view.GeneratedProfile != want {
		t.Fatalf("GeneratedProfile =\n%q\nwant\n%q", view.GeneratedProfile, want)
	}
}

func TestBuildProfileViewProfileStringFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"profile key", `{"profile": "plain profile text"}`, "plain profile text"},
		{"text key", `{"text": "other text"}`, "other text"},
		{"neither key", `{"something": 1}`, `{"something": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := BuildProfileView(tt.content, nil, nil)
			if view.GeneratedProfile != tt.want {
				t.Fatalf("GeneratedProfile = %q, want %q", view.GeneratedProfile, tt.want)
			}
		})
	}
}

func TestDesignConsiderationPrecedence(t *testing.T) {
	embedded := `{
		"generated_profile": {"overview": "x"},
		"class_input": {"design_considerations": {"from": "content"}}
	}`

	t.Run("metadata wins when populated", func(t *testing.T) {
		meta := &types.ProfileMetadata{DesignConsideration: map[string]interface{}{"from": "metadata"}}
		view := BuildProfileView(embedded, meta, nil)
		if view.DesignConsiderations["from"] != "metadata" {
			t.Fatalf("DesignConsiderations = %v, want metadata source", view.DesignConsiderations)
		}
	})

	t.Run("empty metadata dict does not shadow content", func(t *testing.T) {
		meta := &types.ProfileMetadata{DesignConsideration: map[string]interface{}{}}
		view := BuildProfileView(embedded, meta, nil)
		if view.DesignConsiderations["from"] != "content" {
			t.Fatalf("DesignConsiderations = %v, want content source", view.DesignConsiderations)
		}
	})

	t.Run("metadata class_input is last resort", func(t *testing.T) {
		meta := &types.ProfileMetadata{
			ClassInput: &types.ClassInput{DesignConsiderations: map[string]interface{}{"from": "meta class_input"}},
		}
		view := BuildProfileView(`{"generated_profile": {"overview": "x"}}`, meta, nil)
		if view.DesignConsiderations["from"] != "meta class_input" {
			t.Fatalf("DesignConsiderations = %v, want metadata class_input source", view.DesignConsiderations)
		}
	})
}

func TestBuildProfileViewEmbeddedBeatsFallback(t *testing.T) {
	content := `{
		"generated_profile": {"overview": "x"},
		"class_input": {
			"discipline_info": {"discipline_name": "Chemistry", "discipline_description": "d"},
			"class_info": {"class_size": 30, "class_duration": "50 minutes", "prior_knowledge": "none",
				"learning_challenges": "group work, peer review||timed quizzes"}
		}
	}`
	fallbackCalled := false
	view := BuildProfileView(content, nil, func() *types.ClassInput {
		fallbackCalled = true
		return physicsClassInput()
	})
	if fallbackCalled {
		t.Fatal("fallback must not be consulted when content embeds class_input")
	}
	if view.DisciplineInfo.DisciplineName != "Chemistry" {
		t.Fatalf("DisciplineName = %q, want embedded value", view.DisciplineInfo.DisciplineName)
	}
	if view.ClassInfo.ClassSize != "30" {
		t.Fatalf("ClassSize = %q, want numeric coerced to string", view.ClassInfo.ClassSize)
	}
	wantChallenges := []string{"group work", "peer review", "timed quizzes"}
	if !reflect.DeepEqual(view.ClassInfo.LearningChallenges, wantChallenges) {
		t.Fatalf("LearningChallenges = %v, want %v", view.ClassInfo.LearningChallenges, wantChallenges)
	}
	// Embedded class_input had no course_info; the section stays keyed but
	// empty instead of mixing in fallback values.
	if view.CourseInfo.CourseName != "" {
		t.Fatalf("CourseInfo = %+v, want empty section", view.CourseInfo)
	}
}

func TestBuildProfileViewFallbackWhenNoEmbedded(t *testing.T) {
	content := `{"generated_profile": {"overview": "x"}}`
	view := BuildProfileView(content, nil, func() *types.ClassInput { return physicsClassInput() })
	if view.CourseInfo.CourseName != "Introductory Mechanics" {
		t.Fatalf("CourseName = %q, want fallback value", view.CourseInfo.CourseName)
	}
	if got := view.ClassInfo.LearningChallenges; len(got) != 2 {
		t.Fatalf("LearningChallenges = %v, want 2 entries", got)
	}
}
