package security

import (
	"reflect"
	"strings"
)

const (
	RolePrefix = "ROLE_"
	RoleAdmin  = RolePrefix + "ADMIN"
	RoleUser   = RolePrefix + "USER"

	// RolesClaim - claim токена со списком ролей пользователя
	RolesClaim = "roles"

	oidcUserAuthority = "OIDC_USER"
)

type Authority interface {
	Authority() string
}

type GrantedAuthority string

func (a GrantedAuthority) Authority() string {
	return string(a)
}

// OidcUserAuthority несёт claims проверенного ID токена
type OidcUserAuthority struct {
	claims Claims
}

func NewOidcUserAuthority(claims map[string]any) OidcUserAuthority {
	copied := make(Claims, len(claims))
	for k, v := range claims {
		copied[k] = v
	}
	return OidcUserAuthority{claims: copied}
}

func (a OidcUserAuthority) Authority() string {
	return oidcUserAuthority
}

func (a OidcUserAuthority) Claims() Claims {
	return a.claims
}

// MapAuthorities дополняет набор ролями ROLE_<ROLE> из claim roles каждого OIDC полномочия.
// Обычные полномочия совпадают по имени, OIDC полномочия по claims.
// Порожденные полномочия не несут claims и повторно не раскрываются, поэтому
// повторный вызов на результате ничего не меняет.
func MapAuthorities(authorities []Authority) []Authority {
	mapped := make([]Authority, 0, len(authorities))
	seen := make(map[string]struct{}, len(authorities))
	var users []OidcUserAuthority

	add := func(a Authority) {
		if oidc, ok := a.(OidcUserAuthority); ok {
			for _, u := range users {
				if reflect.DeepEqual(u.claims, oidc.claims) {
					return
				}
			}
			users = append(users, oidc)
			mapped = append(mapped, a)
			return
		}
		if _, ok := seen[a.Authority()]; ok {
			return
		}
		seen[a.Authority()] = struct{}{}
		mapped = append(mapped, a)
	}

	for _, a := range authorities {
		add(a)
	}

	for _, a := range authorities {
		oidc, ok := a.(OidcUserAuthority)
		if !ok {
			continue
		}
		roles, _ := oidc.Claims().StringList(RolesClaim)
		for _, role := range roles {
			add(GrantedAuthority(RolePrefix + strings.ToUpper(role)))
		}
	}

	return mapped
}

func HasAuthority(authorities []Authority, name string) bool {
	for _, a := range authorities {
		if a.Authority() == name {
			return true
		}
	}
	return false
}

func AuthorityNames(authorities []Authority) []string {
	names := make([]string, len(authorities))
	for i, a := range authorities {
		names[i] = a.Authority()
	}
	return names
}
