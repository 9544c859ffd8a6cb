package keycloak

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"taskManagement/internal/logger"
	"taskManagement/internal/models/user"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"go.uber.org/zap"
)

var (
	ErrLookupFailed = errors.New("не удалось получить данные пользователя из Keycloak")
	ErrClosed       = errors.New("клиент Keycloak закрыт")
)

// запас до истечения токена, после которого он запрашивается заново
const tokenExpirySkew = 30 * time.Second

// AdminAPI - часть gocloak, которой пользуется Lookup
type AdminAPI interface {
	GetToken(ctx context.Context, realm string, options gocloak.TokenOptions) (*gocloak.JWT, error)
	GetUserByID(ctx context.Context, accessToken, realm, userID string) (*gocloak.User, error)
	GetUsers(ctx context.Context, accessToken, realm string, params gocloak.GetUsersParams) ([]*gocloak.User, error)
	RevokeToken(ctx context.Context, realm, clientID, clientSecret, refreshToken string) error
}

type Config struct {
	URL          string
	Realm        string
	ClientID     string
	ClientSecret string
}

// Lookup ищет пользователей через Admin API Keycloak.
// Сервисному аккаунту клиента нужны роли view-users и query-users.
type Lookup struct {
	api AdminAPI
	cfg Config

	mtx       sync.Mutex
	token     *gocloak.JWT
	expiresAt time.Time
	closed    bool
	closeOnce sync.Once
}

// New подключается к Keycloak по client credentials; соединение освобождается через Close
func New(ctx context.Context, cfg Config) (*Lookup, error) {
	return NewWithAPI(ctx, gocloak.NewClient(cfg.URL), cfg)
}

func NewWithAPI(ctx context.Context, api AdminAPI, cfg Config) (*Lookup, error) {
	if api == nil {
		return nil, errors.New("keycloak: api не задан")
	}
	if cfg.Realm == "" || cfg.ClientID == "" {
		return nil, errors.New("keycloak: realm и client id обязательны")
	}

	l := &Lookup{api: api, cfg: cfg}
	if _, err := l.accessToken(ctx); err != nil {
		logger.Error("Keycloak: Не удалось получить токен сервисного аккаунта", err,
			zap.String("realm", cfg.Realm),
			zap.String("client_id", cfg.ClientID))
		return nil, err
	}

	logger.Info("Keycloak: Подключение установлено",
		zap.String("url", cfg.URL),
		zap.String("realm", cfg.Realm))
	return l, nil
}

func (l *Lookup) accessToken(ctx context.Context) (string, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.closed {
		return "", ErrClosed
	}
	if l.token != nil && time.Now().Before(l.expiresAt) {
		return l.token.AccessToken, nil
	}

	grantType := "client_credentials"
	token, err := l.api.GetToken(ctx, l.cfg.Realm, gocloak.TokenOptions{
		ClientID:     &l.cfg.ClientID,
		ClientSecret: &l.cfg.ClientSecret,
		GrantType:    &grantType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: получение токена: %w", ErrLookupFailed, err)
	}

	l.token = token
	l.expiresAt = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenExpirySkew)
	return token.AccessToken, nil
}

// FindUserInfo возвращает found=false без ошибки, если пользователя нет.
// Любая другая ошибка оборачивается в ErrLookupFailed.
func (l *Lookup) FindUserInfo(ctx context.Context, userID string) (*user.Info, bool, error) {
	logger.Debug("Keycloak: Поиск пользователя", zap.String("user_id", userID))

	token, err := l.accessToken(ctx)
	if err != nil {
		return nil, false, err
	}

	kcUser, err := l.api.GetUserByID(ctx, token, l.cfg.Realm, userID)
	if err != nil {
		if isNotFound(err) {
			logger.Debug("Keycloak: Пользователь не найден", zap.String("user_id", userID))
			return nil, false, nil
		}
		logger.Error("Keycloak: Ошибка поиска пользователя", err, zap.String("user_id", userID))
		return nil, false, fmt.Errorf("%w: пользователь %s: %w", ErrLookupFailed, userID, err)
	}

	info, err := toUserInfo(kcUser)
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// FindUsers передаёт limit и offset в Keycloak как есть, порядок сохраняется
func (l *Lookup) FindUsers(ctx context.Context, searchTerm string, limit, offset int) ([]*user.Info, error) {
	logger.Debug("Keycloak: Поиск пользователей",
		zap.String("search", searchTerm),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	token, err := l.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	users, err := l.api.GetUsers(ctx, token, l.cfg.Realm, gocloak.GetUsersParams{
		Search: &searchTerm,
		First:  &offset,
		Max:    &limit,
	})
	if err != nil {
		logger.Error("Keycloak: Ошибка поиска пользователей", err, zap.String("search", searchTerm))
		return nil, fmt.Errorf("%w: поиск %q: %w", ErrLookupFailed, searchTerm, err)
	}

	if limit >= 0 && len(users) > limit {
		users = users[:limit]
	}

	res := make([]*user.Info, 0, len(users))
	for _, u := range users {
		info, err := toUserInfo(u)
		if err != nil {
			return nil, err
		}
		res = append(res, info)
	}

	logger.Debug("Keycloak: Найдено пользователей", zap.Int("count", len(res)))
	return res, nil
}

// Close отзывает токен сервисного аккаунта; повторные вызовы ничего не делают
func (l *Lookup) Close(ctx context.Context) error {
	var err error
	l.closeOnce.Do(func() {
		l.mtx.Lock()
		token := l.token
		l.token = nil
		l.closed = true
		l.mtx.Unlock()

		if token == nil {
			return
		}

		revoke := token.RefreshToken
		if revoke == "" {
			revoke = token.AccessToken
		}
		if err = l.api.RevokeToken(ctx, l.cfg.Realm, l.cfg.ClientID, l.cfg.ClientSecret, revoke); err != nil {
			logger.Warn("Keycloak: Не удалось отозвать токен", zap.Error(err))
			err = fmt.Errorf("отзыв токена: %w", err)
			return
		}
		logger.Info("Keycloak: Соединение закрыто")
	})
	return err
}

func isNotFound(err error) bool {
	var apiErr *gocloak.APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

func toUserInfo(u *gocloak.User) (*user.Info, error) {
	if u == nil {
		return nil, fmt.Errorf("%w: пустой ответ", user.ErrMalformed)
	}
	return user.New(user.Claims{
		Subject:           gocloak.PString(u.ID),
		PreferredUsername: gocloak.PString(u.Username),
		GivenName:         u.FirstName,
		FamilyName:        u.LastName,
		Email:             u.Email,
		Profile:           firstAttribute(u, user.ClaimProfile),
		Picture:           firstAttribute(u, user.ClaimPicture),
	})
}

func firstAttribute(u *gocloak.User, name string) *string {
	if u.Attributes == nil {
		return nil
	}
	values := (*u.Attributes)[name]
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}
