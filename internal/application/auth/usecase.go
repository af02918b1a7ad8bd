package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/dto"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/repository"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/subscription"
	"github.com/tauntify/ASPMS-PRO-sub002/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// TxRunner abre la transacción del alta: empresa, usuario y suscripción se crean juntos o nada.
type TxRunner interface {
	RunRegistration(ctx context.Context, fn func(
		companies repository.CompanyRepository,
		users repository.UserRepository,
		subs repository.SubscriptionRepository,
	) error) error
}

// StatusPresenter arma el estado de suscripción que se devuelve al registrarse (billing.UseCase).
type StatusPresenter interface {
	Present(sub *entity.Subscription) (*dto.SubscriptionStatusResponse, error)
}

// AuthUseCase casos de uso de autenticación: alta de firma y login.
type AuthUseCase struct {
	users     repository.UserRepository
	tx        TxRunner
	lifecycle *subscription.Lifecycle
	presenter StatusPresenter
	jwtCfg    JWTConfig
	now       func() time.Time
	log       zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	users repository.UserRepository,
	tx TxRunner,
	lifecycle *subscription.Lifecycle,
	presenter StatusPresenter,
	jwtCfg JWTConfig,
	now func() time.Time,
	log zerolog.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		users:     users,
		tx:        tx,
		lifecycle: lifecycle,
		presenter: presenter,
		jwtCfg:    jwtCfg,
		now:       now,
		log:       log,
	}
}

// RegisterFirm da de alta una firma con su usuario dueño (rol admin) y le abre el trial.
// El dueño de la suscripción es la empresa. Email repetido → domain.ErrEmailAlreadyExists.
func (uc *AuthUseCase) RegisterFirm(ctx context.Context, in dto.RegisterFirmRequest) (*dto.RegisterFirmResponse, error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.CompanyName == "" || in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("%w: company_name y email son obligatorios", domain.ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos 8 caracteres", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	name := in.Name
	if name == "" {
		name = in.Email
	}

	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      in.CompanyName,
		TaxID:     in.TaxID,
		Email:     in.Email,
		Status:    entity.CompanyActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    company.ID,
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         entity.RoleAdmin,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	trial, err := uc.lifecycle.CreateTrial(company.ID, now)
	if err != nil {
		return nil, err
	}

	err = uc.tx.RunRegistration(ctx, func(
		companies repository.CompanyRepository,
		users repository.UserRepository,
		subs repository.SubscriptionRepository,
	) error {
		if err := companies.Create(ctx, company); err != nil {
			return err
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		return subs.Create(ctx, trial)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("owner_id", company.ID).
		Str("user_id", user.ID).
		Time("trial_end", trial.TrialEndDate).
		Msg("firma registrada con trial")

	status, err := uc.presenter.Present(trial)
	if err != nil {
		return nil, err
	}
	return &dto.RegisterFirmResponse{
		Company:      toCompanyResponse(company),
		User:         *toUserResponse(user),
		Subscription: *status,
	}, nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes, jwt.Identity{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	})
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toCompanyResponse(c *entity.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
