package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"dvlottery.backend/internal/domain/entities"
	domainerrors "dvlottery.backend/internal/domain/errors"
)

func TestUserRepository_CreateGetAndUpdate(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &entities.User{
		Name:         "Arben",
		Email:        "arben@example.com",
		PasswordHash: "hash",
		PackageType:  entities.PackageIndividual,
	}
	require.NoError(t, repo.Create(ctx, u))
	require.NotEqual(t, uuid.Nil, u.ID)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)
	require.False(t, byID.IsVerified)
	require.Equal(t, entities.PaymentStatusPending, byID.PaymentStatus)
	require.False(t, byID.PaymentCustomerID.Valid)

	byEmail, err := repo.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	_, err = repo.GetByEmail(ctx, "ARBEN@example.com")
	require.ErrorIs(t, err, domainerrors.ErrNotFound, "email lookup is case-sensitive")

	require.NoError(t, repo.UpdateName(ctx, u.ID, "Arben K"))
	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "hash2"))
	require.NoError(t, repo.UpdatePackage(ctx, u.ID, entities.PackageCouple))
	require.NoError(t, repo.MarkVerified(ctx, u.ID))
	require.NoError(t, repo.TouchLastLogin(ctx, u.ID, time.Now()))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Arben K", got.Name)
	require.Equal(t, "hash2", got.PasswordHash)
	require.Equal(t, entities.PackageCouple, got.PackageType)
	require.True(t, got.IsVerified)
	require.True(t, got.LastLoginAt.Valid)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.User{Name: "A", Email: "dup@example.com", PasswordHash: "h", PackageType: entities.PackageIndividual}))
	err := repo.Create(ctx, &entities.User{Name: "B", Email: "dup@example.com", PasswordHash: "h", PackageType: entities.PackageFamily})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestUserRepository_MarkPaymentCompletedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &entities.User{Name: "A", Email: "pay@example.com", PasswordHash: "h", PackageType: entities.PackageCouple}
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, repo.MarkPaymentCompleted(ctx, u.ID, "cus_1"))
	require.NoError(t, repo.MarkPaymentCompleted(ctx, u.ID, ""))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentStatusCompleted, got.PaymentStatus)
	require.Equal(t, "cus_1", got.PaymentCustomerID.String)

	total, verified, paid, err := repo.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, int64(0), verified)
	require.Equal(t, int64(1), paid)
}

func TestUserRepository_NotFoundBranches(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()
	id := uuid.New()

	_, err := repo.GetByID(ctx, id)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	require.ErrorIs(t, repo.UpdateName(ctx, id, "x"), domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.UpdatePassword(ctx, id, "hash"), domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.MarkVerified(ctx, id), domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.MarkPaymentCompleted(ctx, id, "cus"), domainerrors.ErrNotFound)
}

func TestUserRepository_DBErrors(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	// no table: every call surfaces the driver error
	require.Error(t, repo.Create(ctx, &entities.User{Name: "A", Email: "a@b.c", PasswordHash: "h", PackageType: entities.PackageIndividual}))
	_, err := repo.GetByID(ctx, uuid.New())
	require.Error(t, err)
	require.NotErrorIs(t, err, domainerrors.ErrNotFound)
	_, _, _, err = repo.Counts(ctx)
	require.Error(t, err)
}

func TestVerificationCodeRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	createVerificationCodeTable(t, db)
	repo := NewVerificationCodeRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	live := &entities.VerificationCode{UserID: userID, Code: "123456", ExpiresAt: now.Add(15 * time.Minute)}
	stale := &entities.VerificationCode{UserID: userID, Code: "654321", ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, stale))

	found, err := repo.FindByUserAndCode(ctx, userID, "123456")
	require.NoError(t, err)
	require.Equal(t, live.ID, found.ID)

	expired, err := repo.FindByUserAndCode(ctx, userID, "654321")
	require.NoError(t, err, "expired rows are still returned for the caller to judge")
	require.True(t, expired.IsExpired(now))

	_, err = repo.FindByUserAndCode(ctx, uuid.New(), "123456")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	purged, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)

	require.NoError(t, repo.DeleteByID(ctx, live.ID))
	require.ErrorIs(t, repo.DeleteByID(ctx, live.ID), domainerrors.ErrNotFound)

	require.NoError(t, repo.Create(ctx, &entities.VerificationCode{UserID: userID, Code: "111111", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, repo.DeleteByUserID(ctx, userID))
	_, err = repo.FindByUserAndCode(ctx, userID, "111111")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPasswordResetTokenRepository_QueryTimeExpiry(t *testing.T) {
	db := newTestDB(t)
	createPasswordResetTokenTable(t, db)
	repo := NewPasswordResetTokenRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &entities.PasswordResetToken{UserID: userID, TokenHash: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &entities.PasswordResetToken{UserID: userID, TokenHash: "old", ExpiresAt: now.Add(-time.Hour)}))

	tok, err := repo.FindValidByHash(ctx, "live", now)
	require.NoError(t, err)
	require.Equal(t, userID, tok.UserID)

	_, err = repo.FindValidByHash(ctx, "old", now)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.FindValidByHash(ctx, "live", now.Add(2*time.Hour))
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	purged, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)

	require.NoError(t, repo.DeleteByUserID(ctx, userID))
	_, err = repo.FindValidByHash(ctx, "live", now)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}
