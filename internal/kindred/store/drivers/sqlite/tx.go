package sqlite

import (
	"context"
	"database/sql"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open; caller commits or rolls back

// Ping is a no-op for transactions; the connection already exists.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations are applied before any tx starts

func (t *txStore) Users() store.Users                             { return &usersRepo{q: t.tx} }
func (t *txStore) Members() store.Members                         { return &membersRepo{q: t.tx} }
func (t *txStore) InviteLinks() store.InviteLinks                 { return &inviteLinksRepo{q: t.tx} }
func (t *txStore) Brands() store.Brands                           { return &brandsRepo{q: t.tx} }
func (t *txStore) Suppliers() store.Suppliers                     { return &suppliersRepo{q: t.tx} }
func (t *txStore) Organisations() store.Organisations             { return &organisationsRepo{q: t.tx} }
func (t *txStore) OrganisationMembers() store.OrganisationMembers { return &orgMembersRepo{q: t.tx} }
func (t *txStore) OrganisationInvites() store.OrganisationInvites { return &orgInvitesRepo{q: t.tx} }
func (t *txStore) SupplierClaims() store.SupplierClaims           { return &supplierClaimsRepo{q: t.tx} }
