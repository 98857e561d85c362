package mysql

import (
	"testing"

	"github.com/ulchatur/app/internal/repository"
)

func strptr(s string) *string { return &s }

func TestBuildUserUpdateNameOnly(t *testing.T) {
	clause, args, ok := buildUserUpdate(repository.UpdateUserInput{Name: strptr("Annie")})
	if !ok {
		t.Fatal("expected a buildable update")
	}
	if clause != "name = ?" {
		t.Fatalf("unexpected clause: %q", clause)
	}
	if len(args) != 1 || args[0] != "Annie" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildUserUpdateEmailOnly(t *testing.T) {
	clause, args, ok := buildUserUpdate(repository.UpdateUserInput{Email: strptr("new@x.com")})
	if !ok {
		t.Fatal("expected a buildable update")
	}
	if clause != "email = ?" {
		t.Fatalf("unexpected clause: %q", clause)
	}
	if len(args) != 1 || args[0] != "new@x.com" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildUserUpdateBothFieldsKeepsColumnOrder(t *testing.T) {
	clause, args, ok := buildUserUpdate(repository.UpdateUserInput{
		Name:  strptr("Annie"),
		Email: strptr("new@x.com"),
	})
	if !ok {
		t.Fatal("expected a buildable update")
	}
	if clause != "name = ?, email = ?" {
		t.Fatalf("unexpected clause: %q", clause)
	}
	if len(args) != 2 || args[0] != "Annie" || args[1] != "new@x.com" {
		t.Fatalf("args must follow column order: %v", args)
	}
}

func TestBuildUserUpdateEmptyInput(t *testing.T) {
	clause, args, ok := buildUserUpdate(repository.UpdateUserInput{})
	if ok {
		t.Fatalf("empty input must not build, got %q %v", clause, args)
	}
}
