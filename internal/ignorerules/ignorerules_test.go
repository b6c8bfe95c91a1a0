package ignorerules

import "testing"

func TestExcludedDotAndUnderscoreDirs(t *testing.T) {
	m := New(nil)

	if !m.Excluded("/root/.git", true) {
		t.Error("expected dotfile directory to be excluded")
	}
	if !m.Excluded("/root/_cache", true) {
		t.Error("expected underscore-prefixed directory to be excluded")
	}
	if m.Excluded("/root/.hidden.txt", false) {
		t.Error("dot-prefix exclusion only applies to directories")
	}
}

func TestExcludedNameRule(t *testing.T) {
	m := New([]string{"# comment", "", "node_modules"})

	if !m.Excluded("/repo/node_modules", true) {
		t.Error("expected exact basename match to be excluded")
	}
	if m.Excluded("/repo/node_modules_backup", true) {
		t.Error("name rule must match the basename exactly, not as a prefix")
	}
	if m.Excluded("/repo/src/node_modules_file.txt", false) {
		t.Error("name rules apply to directories only")
	}
}

func TestExcludedSubstringRule(t *testing.T) {
	m := New([]string{"vendor/cache"})

	if !m.Excluded("/repo/vendor/cache/gems/foo.gem", false) {
		t.Error("expected substring rule to match anywhere in the path")
	}
	if m.Excluded("/repo/vendor/other", false) {
		t.Error("substring rule should not match unrelated paths")
	}
}

func TestDisabledMatcherExcludesNothing(t *testing.T) {
	if Disabled.Excluded("/repo/node_modules", true) {
		t.Error("Disabled matcher must not exclude by rule")
	}
	if !Disabled.Excluded("/repo/.git", true) {
		t.Error("Disabled matcher still applies the unconditional dot/underscore rule")
	}
}
