package user

import (
	"errors"
	"fmt"
)

// Имена стандартных OIDC claims
const (
	ClaimSubject           = "sub"
	ClaimPreferredUsername = "preferred_username"
	ClaimName              = "name"
	ClaimGivenName         = "given_name"
	ClaimFamilyName        = "family_name"
	ClaimEmail             = "email"
	ClaimProfile           = "profile"
	ClaimPicture           = "picture"
	ClaimZoneInfo          = "zoneinfo"
)

var ErrMalformed = errors.New("неполная запись пользователя")

// Claims - сырые данные о пользователе из провайдера идентификации
type Claims struct {
	Subject           string
	PreferredUsername string
	GivenName         *string
	FamilyName        *string
	Email             *string
	Profile           *string
	Picture           *string
}

// Info неизменяема после создания
type Info struct {
	subject  string
	username string
	fullName string
	email    *string
	profile  *string
	picture  *string
}

func New(c Claims) (*Info, error) {
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: нет %s", ErrMalformed, ClaimSubject)
	}
	if c.PreferredUsername == "" {
		return nil, fmt.Errorf("%w: нет %s у пользователя %s", ErrMalformed, ClaimPreferredUsername, c.Subject)
	}

	return &Info{
		subject:  c.Subject,
		username: c.PreferredUsername,
		fullName: FullName(c.GivenName, c.FamilyName, c.PreferredUsername),
		email:    nonEmpty(c.Email),
		profile:  nonEmpty(c.Profile),
		picture:  nonEmpty(c.Picture),
	}, nil
}

// FullName: имя и фамилия, затем одно из них, затем логин
func FullName(first, last *string, username string) string {
	first, last = nonEmpty(first), nonEmpty(last)
	switch {
	case first != nil && last != nil:
		return *first + " " + *last
	case first != nil:
		return *first
	case last != nil:
		return *last
	default:
		return username
	}
}

func (i *Info) Subject() string { return i.subject }

func (i *Info) PreferredUsername() string { return i.username }

func (i *Info) FullName() string { return i.fullName }

func (i *Info) Email() (string, bool) { return deref(i.email) }

func (i *Info) Profile() (string, bool) { return deref(i.profile) }

func (i *Info) Picture() (string, bool) { return deref(i.picture) }

// Claims возвращает копию; отсутствующие необязательные поля в карту не попадают
func (i *Info) Claims() map[string]any {
	claims := map[string]any{
		ClaimSubject:           i.subject,
		ClaimPreferredUsername: i.username,
		ClaimName:              i.fullName,
	}
	if v, ok := i.Email(); ok {
		claims[ClaimEmail] = v
	}
	if v, ok := i.Profile(); ok {
		claims[ClaimProfile] = v
	}
	if v, ok := i.Picture(); ok {
		claims[ClaimPicture] = v
	}
	return claims
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
