package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookcase/internal/domain/account"
	"github.com/xiebiao/bookcase/internal/domain/author"
	"github.com/xiebiao/bookcase/internal/domain/category"
	apperrors "github.com/xiebiao/bookcase/pkg/errors"
)

// newMockDB 基于sqlmock创建GORM连接（不依赖真实MySQL）
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func q(sql string) string {
	return regexp.QuoteMeta(sql)
}

func TestAuthorRepository_FindAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuthorRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "first_name", "middle_name", "last_name", "position", "created_at", "updated_at"}).
		AddRow(2, "Karel", "", "Čapek", 0, now, now).
		AddRow(1, "Jan", "", "Neruda", 1, now, now)
	mock.ExpectQuery(q("SELECT * FROM `authors` ORDER BY position, id")).WillReturnRows(rows)

	authors, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, uint(2), authors[0].ID)
	assert.Equal(t, "Čapek", authors[0].LastName)
	assert.Equal(t, 1, authors[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorRepository_FindByID(t *testing.T) {
	t.Run("不存在返回ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAuthorRepository(db)

		mock.ExpectQuery(q("SELECT * FROM `authors` WHERE `authors`.`id` = ?")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), 42)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("数据库错误包装为DatabaseError", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAuthorRepository(db)

		mock.ExpectQuery(q("SELECT * FROM `authors`")).WillReturnError(errors.New("connection refused"))

		_, err := repo.FindByID(context.Background(), 1)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeDatabaseError, apperrors.GetAppError(err).Code)
	})
}

func TestAuthorRepository_SaveNew(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuthorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO `authors`")).WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	a := &author.Author{FirstName: "Božena", LastName: "Němcová", Position: 3}
	require.NoError(t, repo.Save(context.Background(), a))

	assert.Equal(t, uint(7), a.ID, "插入后回填ID")
	assert.False(t, a.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuthorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM `book_authors` WHERE author_id IN (?)")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("DELETE FROM `authors` WHERE `authors`.`id` = ?")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), &author.Author{ID: 3}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_DeleteAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM `book_categories`")).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(q("DELETE FROM `categories`")).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteAll(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_DeleteAllRollback(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM `book_categories`")).WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	err := repo.DeleteAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDatabaseError, apperrors.GetAppError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("用户名重复", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAccountRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(q("INSERT INTO `accounts`")).
			WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'admin' for key 'accounts.idx_accounts_username'"))
		mock.ExpectRollback()

		err := repo.Create(ctx, account.NewAccount("admin", "hash"))
		assert.ErrorIs(t, err, apperrors.ErrUsernameDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("创建回填ID", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAccountRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(q("INSERT INTO `accounts`")).WillReturnResult(sqlmock.NewResult(5, 1))
		mock.ExpectCommit()

		a := account.NewAccount("reader", "hash")
		require.NoError(t, repo.Create(ctx, a))
		assert.Equal(t, uint(5), a.ID)
	})

	t.Run("查找账号", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAccountRepository(db)

		now := time.Now()
		mock.ExpectQuery(q("SELECT * FROM `accounts` WHERE username = ?")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "roles", "created_at", "updated_at"}).
				AddRow(1, "admin", "hash", `["ROLE_USER","ROLE_ADMIN"]`, now, now))

		a, err := repo.FindByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, []account.Role{account.RoleUser, account.RoleAdmin}, a.Roles)
		assert.True(t, a.HasRole(account.RoleAdmin))
	})

	t.Run("账号不存在", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAccountRepository(db)

		mock.ExpectQuery(q("SELECT * FROM `accounts` WHERE username = ?")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
	})

	t.Run("统计账号数", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAccountRepository(db)

		mock.ExpectQuery(q("SELECT count(*) FROM `accounts`")).
			WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(2))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestTxManager(t *testing.T) {
	ctx := context.Background()

	t.Run("成功提交", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTxManager(db)
		repo := NewCategoryRepository(db)

		// 仓储内的Transaction在已有事务中使用SAVEPOINT
		mock.ExpectBegin()
		mock.ExpectExec(q("SAVEPOINT")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(q("DELETE FROM `book_categories` WHERE category_id IN (?)")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(q("DELETE FROM `categories`")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tm.Transaction(ctx, func(ctx context.Context) error {
			return repo.Delete(ctx, &category.Category{ID: 9})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("返回错误时回滚", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTxManager(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		errBoom := errors.New("boom")
		err := tm.Transaction(ctx, func(ctx context.Context) error { return errBoom })
		assert.ErrorIs(t, err, errBoom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
