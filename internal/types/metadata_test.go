package types

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFlexStringUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"45 students"`, "45 students"},
		{"integer", `45`, "45"},
		{"float", `2.5`, "2.5"},
		{"null", `null`, ""},
		{"object degrades to empty", `{"a": 1}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexString
			if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if f.String() != tt.want {
				t.Fatalf("got %q, want %q", f.String(), tt.want)
			}
		})
	}
}

func TestStringListUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want StringList
	}{
		{"list", `["a", " b ", ""]`, StringList{"a", "b"}},
		{"pipe joined", `"group work, peer review||timed quizzes"`, StringList{"group work", "peer review", "timed quizzes"}},
		{"comma joined", `"a, b,c"`, StringList{"a", "b", "c"}},
		{"empty string", `""`, StringList{}},
		{"number degrades to empty", `7`, StringList{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringList
			if err := json.Unmarshal([]byte(tt.raw), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(s, tt.want) {
				t.Fatalf("got %v, want %v", s, tt.want)
			}
		})
	}
}

func TestSplitChallengeList(t *testing.T) {
	got := SplitChallengeList(" a ||b, c ,,")
	want := StringList{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
