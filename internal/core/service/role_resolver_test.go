package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/respira/wellness-api/internal/core/domain"
)

func TestRoleResolver_RoleName(t *testing.T) {
	roles := newStubRoleRepo(domain.RoleUser, domain.RoleAdmin)
	resolver := NewRoleResolver(roles, nil, zerolog.Nop())

	cases := []struct {
		name string
		role domain.UserRole
		want string
		err  error
	}{
		{"expanded", domain.Role{ID: "role-admin", Name: "admin"}, "admin", nil},
		{"expanded pointer", &domain.Role{ID: "role-user", Name: "user"}, "user", nil},
		{"expanded without name", domain.Role{ID: "role-admin"}, "admin", nil},
		{"reference", domain.RoleRef("role-user"), "user", nil},
		{"unknown reference", domain.RoleRef("role-ghost"), "", domain.ErrRoleNotFound},
		{"empty reference", domain.RoleRef(""), "", domain.ErrRoleNotFound},
		{"nil", nil, "", domain.ErrRoleNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolver.RoleName(context.Background(), tc.role)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRoleResolver_UsesCache(t *testing.T) {
	roles := newStubRoleRepo(domain.RoleAdmin)
	cache := newStubRoleCache()
	resolver := NewRoleResolver(roles, cache, zerolog.Nop())

	for i := 0; i < 3; i++ {
		name, err := resolver.RoleName(context.Background(), domain.RoleRef("role-admin"))
		if err != nil || name != "admin" {
			t.Fatalf("lookup %d: got %q %v", i, name, err)
		}
	}
	if roles.lookups != 1 {
		t.Fatalf("expected a single store lookup, got %d", roles.lookups)
	}
	if cache.names["role-admin"] != "admin" {
		t.Fatalf("expected cache to hold the role name")
	}
}

func TestRoleResolver_CacheFailureFallsBack(t *testing.T) {
	roles := newStubRoleRepo(domain.RoleUser)
	cache := newStubRoleCache()
	cache.getErr = errors.New("redis unavailable")
	resolver := NewRoleResolver(roles, cache, zerolog.Nop())

	name, err := resolver.RoleName(context.Background(), domain.RoleRef("role-user"))
	if err != nil || name != "user" {
		t.Fatalf("expected fallback to store, got %q %v", name, err)
	}
}

func TestRoleResolver_Expand(t *testing.T) {
	roles := newStubRoleRepo(domain.RoleUser)
	resolver := NewRoleResolver(roles, nil, zerolog.Nop())

	user := &domain.User{ID: "u1", Role: domain.RoleRef("role-user")}
	expanded, err := resolver.Expand(context.Background(), user)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got, ok := expanded.Role.(domain.Role); !ok || got.Name != "user" || got.ID != "role-user" {
		t.Fatalf("unexpected role: %#v", expanded.Role)
	}
	if _, ok := user.Role.(domain.RoleRef); !ok {
		t.Fatalf("Expand must not mutate its input")
	}
}

func TestRoleResolver_ExpandOrRef(t *testing.T) {
	roles := newStubRoleRepo(domain.RoleUser)
	resolver := NewRoleResolver(roles, nil, zerolog.Nop())

	known := &domain.User{ID: "u1", Role: domain.RoleRef("role-user")}
	got, err := resolver.ExpandOrRef(context.Background(), known)
	if err != nil {
		t.Fatalf("expand known role: %v", err)
	}
	if role, ok := got.Role.(domain.Role); !ok || role.Name != "user" {
		t.Fatalf("expected expanded role, got %#v", got.Role)
	}

	orphan := &domain.User{ID: "u2", Role: domain.RoleRef("role-ghost")}
	got, err = resolver.ExpandOrRef(context.Background(), orphan)
	if err != nil {
		t.Fatalf("expected deleted role to be tolerated, got %v", err)
	}
	if ref, ok := got.Role.(domain.RoleRef); !ok || string(ref) != "role-ghost" {
		t.Fatalf("expected bare reference, got %#v", got.Role)
	}

	roles.findErr = errors.New("connection reset")
	if _, err := resolver.ExpandOrRef(context.Background(), orphan); err == nil || errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
}
