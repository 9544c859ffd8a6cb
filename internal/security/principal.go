package security

import (
	"context"
	"fmt"
	"strings"
	"taskManagement/internal/models/user"
	"time"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal - аутентифицированный пользователь текущего запроса
type Principal struct {
	Info        *user.Info
	Zone        *time.Location
	Authorities []Authority
}

func (p *Principal) Subject() string {
	return p.Info.Subject()
}

func (p *Principal) HasAuthority(name string) bool {
	return HasAuthority(p.Authorities, name)
}

// NewPrincipal строит пользователя по claims проверенного токена.
// browserZone - часовой пояс, о котором сообщил клиент; если он пуст или неизвестен,
// используется claim zoneinfo, затем часовой пояс сервера.
func NewPrincipal(claims Claims, browserZone string) (*Principal, error) {
	info, err := user.New(user.Claims{
		Subject:           stringClaim(claims, user.ClaimSubject),
		PreferredUsername: stringClaim(claims, user.ClaimPreferredUsername),
		GivenName:         claims.StringPtr(user.ClaimGivenName),
		FamilyName:        claims.StringPtr(user.ClaimFamilyName),
		Email:             claims.StringPtr(user.ClaimEmail),
		Profile:           claims.StringPtr(user.ClaimProfile),
		Picture:           claims.StringPtr(user.ClaimPicture),
	})
	if err != nil {
		return nil, fmt.Errorf("разбор claims токена: %w", err)
	}

	zone, ok := lookupZone(browserZone)
	if !ok {
		zone = ParseZone(stringClaim(claims, user.ClaimZoneInfo))
	}

	authorities := []Authority{NewOidcUserAuthority(claims)}
	if scope, ok := claims.String("scope"); ok {
		for _, s := range strings.Fields(scope) {
			authorities = append(authorities, GrantedAuthority("SCOPE_"+s))
		}
	}

	return &Principal{
		Info:        info,
		Zone:        zone,
		Authorities: MapAuthorities(authorities),
	}, nil
}

// ParseZone возвращает часовой пояс сервера для пустого или неизвестного имени
func ParseZone(name string) *time.Location {
	if loc, ok := lookupZone(name); ok {
		return loc
	}
	return time.Local
}

func lookupZone(name string) (*time.Location, bool) {
	if name == "" {
		return nil, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, false
	}
	return loc, true
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// CurrentZone - часовой пояс текущего пользователя
func CurrentZone(ctx context.Context) *time.Location {
	if p, ok := PrincipalFrom(ctx); ok && p.Zone != nil {
		return p.Zone
	}
	return time.Local
}

func stringClaim(claims Claims, name string) string {
	v, _ := claims.String(name)
	return v
}
