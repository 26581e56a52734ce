package badger

import (
	"errors"

	badgerdb "github.com/dgraph-io/badger/v3"
	interfaces "github.com/weisyn/splitproof/pkg/interfaces/infrastructure/storage"
)

// Transaction 包装BadgerDB事务，生命周期由 RunInTransaction 管理
type Transaction struct {
	txn *badgerdb.Txn
}

// Get 获取键值，键不存在时返回 nil, nil
func (t *Transaction) Get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Set 写入键值
func (t *Transaction) Set(key, value []byte) error {
	return t.txn.Set(key, value)
}

// Delete 删除键
func (t *Transaction) Delete(key []byte) error {
	return t.txn.Delete(key)
}

// Exists 检查键是否存在
func (t *Transaction) Exists(key []byte) (bool, error) {
	_, err := t.txn.Get(key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}

var _ interfaces.BadgerTransaction = (*Transaction)(nil)
