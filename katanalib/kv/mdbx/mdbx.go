// Package mdbx implements katanalib/kv's storage contract on top of
// github.com/erigontech/mdbx-go, the same embedded ordered B-tree engine the
// teacher uses for chaindata. This is the literal "Storage Engine" component
// spec §4.1 describes: ACID read/write transactions, DupSort tables,
// O(1) delete-current-duplicates cursors, and a versioned-schema open check.
package mdbx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/katana-go/katana/katanalib/kv"
	"github.com/katana-go/katana/katanalib/log"
)

// ErrSchemaMismatch is returned on open when the stored schema version
// differs from kv.DBSchemaVersion (spec §4.1 "the engine refuses to attach
// if the stored version != CURRENT_DB_VERSION").
type ErrSchemaMismatch struct {
	Stored, Current kv.Version
}

func (e *ErrSchemaMismatch) Error() string {
	return fmt.Sprintf("mdbx: database schema %d.%d.%d does not match current %d.%d.%d",
		e.Stored.Major, e.Stored.Minor, e.Stored.Patch,
		e.Current.Major, e.Current.Minor, e.Current.Patch)
}

// DB is the open environment plus the resolved table->DBI mapping.
type DB struct {
	env  *mdbx.Env
	dbis map[string]mdbx.DBI
	path string
}

// Open attaches to (creating if absent) the MDBX environment rooted at
// path, opens every table named in kv.ChaindataTables, and enforces the
// versioned-schema check.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("mdbx: create data dir: %w", err)
	}
	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("mdbx: new env: %w", err)
	}
	if err := env.SetOption(mdbx.OptMaxDB, uint64(len(kv.ChaindataTables))); err != nil {
		return nil, fmt.Errorf("mdbx: set max tables: %w", err)
	}
	if err := env.Open(path, mdbx.NoSubdir|mdbx.Coalesce|mdbx.LifoReclaim, 0o644); err != nil {
		return nil, fmt.Errorf("mdbx: open env at %s: %w", path, err)
	}

	db := &DB{env: env, dbis: make(map[string]mdbx.DBI, len(kv.ChaindataTables)), path: path}

	if err := env.Update(func(txn *mdbx.Txn) error {
		for _, name := range kv.ChaindataTables {
			flags := uint(mdbx.Create)
			if kv.ChaindataTablesCfg[name].Flags&kv.DupSort != 0 {
				flags |= mdbx.DupSort
			}
			dbi, err := txn.OpenDBI(name, flags, nil, nil)
			if err != nil {
				return fmt.Errorf("mdbx: open table %s: %w", name, err)
			}
			db.dbis[name] = dbi
		}
		return checkOrWriteSchemaVersion(txn, db.dbis[kv.DbInfo])
	}); err != nil {
		env.Close()
		return nil, err
	}

	log.New(context.Background()).Info("mdbx database opened", "path", path, "tables", len(db.dbis))
	return db, nil
}

func (db *DB) Close() {
	db.env.Close()
}

func (db *DB) BeginRo(ctx context.Context) (kv.Tx, error) {
	txn, err := db.env.BeginTxn(nil, mdbx.Readonly)
	if err != nil {
		return nil, err
	}
	return &tx{txn: txn, db: db}, nil
}

func (db *DB) BeginRw(ctx context.Context) (kv.RwTx, error) {
	txn, err := db.env.BeginTxn(nil, 0)
	if err != nil {
		return nil, err
	}
	return &rwTx{tx: tx{txn: txn, db: db}}, nil
}

func (db *DB) View(ctx context.Context, f func(tx kv.Tx) error) error {
	t, err := db.BeginRo(ctx)
	if err != nil {
		return err
	}
	defer t.Rollback()
	return f(t)
}

func (db *DB) Update(ctx context.Context, f func(tx kv.RwTx) error) error {
	t, err := db.BeginRw(ctx)
	if err != nil {
		return err
	}
	if err := f(t); err != nil {
		t.Rollback()
		return err
	}
	return t.Commit()
}

var dbInfoVersionKey = []byte("schema_version")

func checkOrWriteSchemaVersion(txn *mdbx.Txn, dbi mdbx.DBI) error {
	stored, err := txn.Get(dbi, dbInfoVersionKey)
	if err != nil && !mdbx.IsNotFound(err) {
		return err
	}
	if len(stored) == 0 {
		return txn.Put(dbi, dbInfoVersionKey, encodeVersion(kv.DBSchemaVersion), 0)
	}
	v := decodeVersion(stored)
	if v != kv.DBSchemaVersion {
		return &ErrSchemaMismatch{Stored: v, Current: kv.DBSchemaVersion}
	}
	return nil
}

func encodeVersion(v kv.Version) []byte {
	return []byte(fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch))
}

func decodeVersion(b []byte) kv.Version {
	var v kv.Version
	fmt.Sscanf(string(b), "%d.%d.%d", &v.Major, &v.Minor, &v.Patch)
	return v
}

// OpenForMigration attaches to an existing MDBX environment the same way
// Open does, but skips the versioned-schema enforcement so a store written
// at an older schema can be opened, rewritten, and re-stamped by `katana db
// migrate` (spec §4.1's "reads transparently upcast" needs an explicit path
// that doesn't hard-error on the exact mismatch Open is built to catch).
func OpenForMigration(path string) (*DB, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("mdbx: create data dir: %w", err)
	}
	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("mdbx: new env: %w", err)
	}
	if err := env.SetOption(mdbx.OptMaxDB, uint64(len(kv.ChaindataTables))); err != nil {
		return nil, fmt.Errorf("mdbx: set max tables: %w", err)
	}
	if err := env.Open(path, mdbx.NoSubdir|mdbx.Coalesce|mdbx.LifoReclaim, 0o644); err != nil {
		return nil, fmt.Errorf("mdbx: open env at %s: %w", path, err)
	}

	db := &DB{env: env, dbis: make(map[string]mdbx.DBI, len(kv.ChaindataTables)), path: path}

	if err := env.Update(func(txn *mdbx.Txn) error {
		for _, name := range kv.ChaindataTables {
			flags := uint(mdbx.Create)
			if kv.ChaindataTablesCfg[name].Flags&kv.DupSort != 0 {
				flags |= mdbx.DupSort
			}
			dbi, err := txn.OpenDBI(name, flags, nil, nil)
			if err != nil {
				return fmt.Errorf("mdbx: open table %s: %w", name, err)
			}
			db.dbis[name] = dbi
		}
		return nil
	}); err != nil {
		env.Close()
		return nil, err
	}

	log.New(context.Background()).Info("mdbx database opened for migration", "path", path, "tables", len(db.dbis))
	return db, nil
}

// WriteSchemaVersion stamps v as the database's schema version, for `katana
// db migrate` to call once every table has been rewritten at the current
// schema.
func WriteSchemaVersion(tx kv.RwTx, v kv.Version) error {
	return tx.Put(kv.DbInfo, dbInfoVersionKey, encodeVersion(v))
}

// ReadSchemaVersion reads the schema version stamped in DbInfo by Open,
// for `katana db version`'s reporting of an existing database's version
// without requiring a full schema-match Open.
func ReadSchemaVersion(tx kv.Tx) (kv.Version, bool, error) {
	stored, err := tx.GetOne(kv.DbInfo, dbInfoVersionKey)
	if err != nil || stored == nil {
		return kv.Version{}, false, err
	}
	return decodeVersion(stored), true, nil
}

// DataDirSizeBytes sums the MDBX data file size, used by `katana db stats`.
func (db *DB) DataDirSizeBytes() (int64, error) {
	var total int64
	err := filepath.Walk(db.path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
