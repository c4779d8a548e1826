package patterns_test

import (
	"testing"

	"github.com/temirov/dumpfiles/internal/patterns"
)

func TestTranslateProducesExpectedGlobs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name                  string
		line                  string
		expectedGlob          string
		expectedNegated       bool
		expectedDirectoryOnly bool
		expectedAnchored      bool
		expectedWildcard      bool
	}{
		{name: "plain_name_matches_any_depth", line: "secret.txt", expectedGlob: "**/secret.txt"},
		{name: "leading_star_without_slash", line: "*.log", expectedGlob: "**/*.log", expectedWildcard: true},
		{name: "directory_only", line: "build/", expectedGlob: "**/build/**", expectedDirectoryOnly: true},
		{name: "anchored_file", line: "/config.yaml", expectedGlob: "/config.yaml", expectedAnchored: true},
		{name: "anchored_directory", line: "/dist/", expectedGlob: "/dist/**", expectedDirectoryOnly: true, expectedAnchored: true},
		{name: "double_wildcard_passes_through", line: "docs/**/draft.md", expectedGlob: "**/docs/**/draft.md", expectedWildcard: true},
		{name: "leading_double_wildcard_kept", line: "**/tmp", expectedGlob: "**/tmp", expectedWildcard: true},
		{name: "star_with_slash_is_not_suffix_rule", line: "*/generated", expectedGlob: "*/generated", expectedWildcard: true},
		{name: "negation_prepends_marker", line: "!keep.log", expectedGlob: "!**/keep.log", expectedNegated: true},
		{name: "negated_directory", line: "!vendor/", expectedGlob: "!**/vendor/**", expectedNegated: true, expectedDirectoryOnly: true},
		{name: "git_prefix_wildcard", line: ".git*", expectedGlob: "**/.git*", expectedWildcard: true},
		{name: "lone_slash_is_empty", line: "/", expectedGlob: "", expectedDirectoryOnly: true},
		{name: "lone_negation_is_empty", line: "!", expectedGlob: "", expectedNegated: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			pattern := patterns.Translate(testCase.line)
			if pattern.Raw != testCase.line {
				t.Fatalf("expected raw %q, got %q", testCase.line, pattern.Raw)
			}
			if pattern.Glob != testCase.expectedGlob {
				t.Fatalf("expected glob %q, got %q", testCase.expectedGlob, pattern.Glob)
			}
			if pattern.Negated != testCase.expectedNegated {
				t.Fatalf("expected negated %t, got %t", testCase.expectedNegated, pattern.Negated)
			}
			if pattern.DirectoryOnly != testCase.expectedDirectoryOnly {
				t.Fatalf("expected directory only %t, got %t", testCase.expectedDirectoryOnly, pattern.DirectoryOnly)
			}
			if pattern.Anchored != testCase.expectedAnchored {
				t.Fatalf("expected anchored %t, got %t", testCase.expectedAnchored, pattern.Anchored)
			}
			if pattern.HasWildcard != testCase.expectedWildcard {
				t.Fatalf("expected wildcard %t, got %t", testCase.expectedWildcard, pattern.HasWildcard)
			}
		})
	}
}

func TestTranslatedGlobMatching(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		line        string
		matching    []string
		notMatching []string
	}{
		{
			name:        "directory_pattern_covers_name_and_descendants_only",
			line:        "build/",
			matching:    []string{"build", "build/app.bin", "build/nested/deep.o", "src/build", "src/build/out.o"},
			notMatching: []string{"rebuild", "build.txt", "builder/x", "src/buildings/a"},
		},
		{
			name:        "suffix_pattern_matches_at_any_depth",
			line:        "*.log",
			matching:    []string{"app.log", "var/app.log", "a/b/c/trace.log"},
			notMatching: []string{"app.log.txt", "logs/readme.md"},
		},
		{
			name:        "unanchored_name_matches_at_any_depth",
			line:        "secret.txt",
			matching:    []string{"secret.txt", "config/secret.txt", "a/b/secret.txt"},
			notMatching: []string{"secret.txt.bak", "mysecret.txt"},
		},
		{
			name:        "anchored_name_matches_only_at_root",
			line:        "/secret.txt",
			matching:    []string{"secret.txt"},
			notMatching: []string{"config/secret.txt"},
		},
		{
			name:        "double_wildcard_spans_directories",
			line:        "docs/**/draft.md",
			matching:    []string{"docs/draft.md", "docs/a/b/draft.md", "site/docs/x/draft.md"},
			notMatching: []string{"docs/final.md"},
		},
		{
			name:        "negated_pattern_matches_like_its_base",
			line:        "!keep.log",
			matching:    []string{"keep.log", "a/keep.log"},
			notMatching: []string{"drop.log"},
		},
		{
			name:        "empty_translation_matches_nothing",
			line:        "/",
			notMatching: []string{"", "a", "a/b"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			pattern := patterns.Translate(testCase.line)
			for _, candidate := range testCase.matching {
				if !pattern.Matches(candidate) {
					t.Fatalf("expected %q (glob %q) to match %q", testCase.line, pattern.Glob, candidate)
				}
			}
			for _, candidate := range testCase.notMatching {
				if pattern.Matches(candidate) {
					t.Fatalf("expected %q (glob %q) not to match %q", testCase.line, pattern.Glob, candidate)
				}
			}
		})
	}
}
