package repository

import (
	"strings"
	"testing"
)

func TestBuildKeywordLikeConditionSQLite(t *testing.T) {
	condition, argCount := buildKeywordLikeConditionByDialect("sqlite", []string{"email", "name"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if condition != "email LIKE ? OR name LIKE ?" {
		t.Fatalf("condition mismatch, got %s", condition)
	}
}

func TestBuildKeywordLikeConditionPostgres(t *testing.T) {
	condition, argCount := buildKeywordLikeConditionByDialect("postgres", []string{"email", "name", "unique_link"})
	if argCount != 3 {
		t.Fatalf("arg count want 3 got %d", argCount)
	}
	if !strings.Contains(condition, "email ILIKE ?") {
		t.Fatalf("postgres should use ILIKE, got %s", condition)
	}
}

func TestBuildKeywordLikeConditionSkipsEmptyColumns(t *testing.T) {
	condition, argCount := buildKeywordLikeConditionByDialect("sqlite", []string{"email", " ", ""})
	if argCount != 1 {
		t.Fatalf("arg count want 1 got %d", argCount)
	}
	if condition != "email LIKE ?" {
		t.Fatalf("condition mismatch, got %s", condition)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}
