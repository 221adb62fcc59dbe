package mysql

import (
	"context"

	"gorm.io/gorm"
)

// txKey context中事务DB的key（私有类型，避免与其它包冲突）
type txKey struct{}

// TxManager 事务管理器（实现movable.Transactor）
// 教学要点:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 支持嵌套事务(GORM自动使用Savepoint)
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn内所有Repository操作通过getDB(ctx)取到同一个事务DB
// fn返回error时ROLLBACK，返回nil时COMMIT
//
// 使用示例（重排position）:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    return repo.SaveAll(ctx, list)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return getDB(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
