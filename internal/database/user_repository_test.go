package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidzorentals/booking-backend/internal/models"
)

var userTestColumns = []string{
	"id", "phone_number", "email", "full_name", "role",
	"phone_verified", "whatsapp_verified", "last_login_at",
	"created_at", "updated_at",
}

func TestCreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(newMockDatabase(db))

	now := time.Now()
	user := &models.User{
		ID:            uuid.New(),
		PhoneNumber:   models.NewNullString("+14155550100"),
		FullName:      "Jane Smith",
		Role:          models.RoleCustomer,
		PhoneVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(
				user.ID, user.PhoneNumber, user.Email, user.FullName, user.Role,
				user.PhoneVerified, user.WhatsAppVerified, sqlmock.AnyArg(), sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(user)
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(fmt.Errorf("duplicate key value violates unique constraint"))

		err := repo.Create(user)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create user")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByPhone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(newMockDatabase(db))
	phone := "+14155550100"

	t.Run("Found", func(t *testing.T) {
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery("SELECT (.+) FROM users WHERE phone_number").
			WithArgs(phone).
			WillReturnRows(sqlmock.NewRows(userTestColumns).AddRow(
				userID.String(), phone, "jane@example.com", "Jane Smith", "customer",
				true, false, nil,
				now, now,
			))

		user, err := repo.GetByPhone(phone)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "Jane Smith", user.FullName)
		assert.Equal(t, models.RoleCustomer, user.Role)
		assert.False(t, user.IsStaff())

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE phone_number").
			WithArgs(phone).
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByPhone(phone)
		require.NoError(t, err)
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(newMockDatabase(db))

	t.Run("Found", func(t *testing.T) {
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE lower\(email\)`).
			WithArgs("Jane@Example.com").
			WillReturnRows(sqlmock.NewRows(userTestColumns).AddRow(
				userID.String(), "+14155550100", "jane@example.com", "Jane Smith", "customer",
				true, false, nil,
				now, now,
			))

		user, err := repo.GetByEmail("Jane@Example.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, userID, user.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE lower\(email\)`).
			WithArgs("missing@example.com").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByEmail("missing@example.com")
		require.NoError(t, err)
		assert.Nil(t, user)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetOrCreateByPhone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(newMockDatabase(db))
	phone := "+14155550100"

	t.Run("Existing User", func(t *testing.T) {
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery("SELECT (.+) FROM users WHERE phone_number").
			WithArgs(phone).
			WillReturnRows(sqlmock.NewRows(userTestColumns).AddRow(
				userID.String(), phone, nil, "Jane Smith", "customer",
				true, false, now,
				now, now,
			))

		user, created, err := repo.GetOrCreateByPhone(phone)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, userID, user.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("New User", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE phone_number").
			WithArgs(phone).
			WillReturnError(sql.ErrNoRows)

		mock.ExpectExec("INSERT INTO users").
			WithArgs(
				sqlmock.AnyArg(), phone, sqlmock.AnyArg(), "", models.RoleCustomer,
				true, false, sqlmock.AnyArg(), sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		user, created, err := repo.GetOrCreateByPhone(phone)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, models.RoleCustomer, user.Role)
		assert.True(t, user.PhoneVerified)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBackfillPhone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(newMockDatabase(db))
	userID := uuid.New()

	mock.ExpectExec("UPDATE users").
		WithArgs("+14155550100", sqlmock.AnyArg(), userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.BackfillPhone(userID, "+14155550100")
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListStaff(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(newMockDatabase(db))

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE role IN").
		WillReturnRows(sqlmock.NewRows(userTestColumns).
			AddRow(
				uuid.NewString(), "+14155550101", "manager@example.com", "Sam Lee", "manager",
				true, false, now,
				now, now,
			).
			AddRow(
				uuid.NewString(), "+14155550102", "admin@example.com", "Alex Kim", "admin",
				true, true, now,
				now, now,
			))

	staff, err := repo.ListStaff()
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.True(t, staff[0].IsStaff())
	assert.True(t, staff[1].IsStaff())

	assert.NoError(t, mock.ExpectationsWereMet())
}
