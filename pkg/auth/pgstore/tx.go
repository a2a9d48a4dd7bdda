package pgstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/credkit/pkg/auth"
	"github.com/dmitrymomot/credkit/pkg/pg"
	"github.com/dmitrymomot/credkit/pkg/totp"
)

const metaColumns = "cid, uid, verified, disabled, created, last_authentication, last_update"

// table describes where one credential kind lives.
type table struct {
	name string
	// extra lists the kind specific columns, in scan order.
	extra string
	// key is the predicate matching the natural key in $1.
	key string
	// lookup is the slot column in credential_lookups, empty for TOTP.
	lookup string
}

var tables = map[auth.Kind]table{
	auth.KindEmailPassword: {
		name:   "email_password_credentials",
		extra:  "email, password",
		key:    "lower(email) = lower($1)",
		lookup: "email_password",
	},
	auth.KindUsernamePassword: {
		name:   "username_password_credentials",
		extra:  "username, password",
		key:    "lower(username) = lower($1)",
		lookup: "username_password",
	},
	auth.KindGithubOAuth: {
		name:   "github_oauth_credentials",
		extra:  "provider_id, username",
		key:    "provider_id = $1",
		lookup: "github_oauth",
	},
	auth.KindTOTP: {
		name:  "totp_credentials",
		extra: "secret",
		key:   "uid = $1",
	},
}

func tableFor(kind auth.Kind) (table, error) {
	t, ok := tables[kind]
	if !ok {
		return table{}, fmt.Errorf("pgstore: unknown credential kind %q", kind)
	}
	return t, nil
}

type txn struct {
	tx        pgx.Tx
	secretKey []byte
}

func (t *txn) InsertUser(ctx context.Context, uid uuid.UUID, now time.Time) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO users (uid, created) VALUES ($1, $2)`, uid, now)
	return mapError(err)
}

func (t *txn) GetUser(ctx context.Context, uid uuid.UUID) (*auth.User, error) {
	var u auth.User
	if err := t.tx.QueryRow(ctx, `SELECT uid FROM users WHERE uid = $1`, uid).Scan(&u.UID); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (t *txn) InsertCredential(ctx context.Context, c auth.Credential) error {
	tbl, err := tableFor(c.Kind())
	if err != nil {
		return err
	}
	extra, err := t.extraValues(c)
	if err != nil {
		return err
	}

	m := auth.MetaOf(c)
	args := append([]any{m.CID, m.UID, m.Verified, m.Disabled, m.Created, m.LastAuthentication, m.LastUpdate}, extra...)
	placeholders := "$1, $2, $3, $4, $5, $6, $7"
	for i := range extra {
		placeholders += ", $" + strconv.Itoa(8+i)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES (%s)`, tbl.name, metaColumns, tbl.extra, placeholders)
	_, err = t.tx.Exec(ctx, query, args...)
	return mapError(err)
}

func (t *txn) GetCredential(ctx context.Context, kind auth.Kind, cid uuid.UUID) (auth.Credential, error) {
	return t.selectOne(ctx, kind, "cid = $1", cid)
}

func (t *txn) GetCredentialByOwner(ctx context.Context, kind auth.Kind, uid uuid.UUID) (auth.Credential, error) {
	return t.selectOne(ctx, kind, "uid = $1", uid)
}

func (t *txn) GetCredentialByKey(ctx context.Context, kind auth.Kind, key string) (auth.Credential, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	arg, ok := keyArg(kind, key)
	if !ok {
		return nil, auth.ErrRecordNotFound
	}
	return t.selectOne(ctx, kind, tbl.key, arg)
}

func (t *txn) UpdateCredential(ctx context.Context, c auth.Credential) error {
	m := auth.MetaOf(c)
	args := []any{m.CID, m.Verified, m.Disabled, m.LastAuthentication, m.LastUpdate}

	var query string
	switch v := c.(type) {
	case *auth.EmailPassword:
		query = `UPDATE email_password_credentials
			SET verified = $2, disabled = $3, last_authentication = $4, last_update = $5, password = $6
			WHERE cid = $1`
		args = append(args, v.PasswordHash)
	case *auth.UsernamePassword:
		query = `UPDATE username_password_credentials
			SET verified = $2, disabled = $3, last_authentication = $4, last_update = $5, password = $6
			WHERE cid = $1`
		args = append(args, v.PasswordHash)
	case *auth.GithubOAuth:
		query = `UPDATE github_oauth_credentials
			SET verified = $2, disabled = $3, last_authentication = $4, last_update = $5, username = $6
			WHERE cid = $1`
		args = append(args, v.ProviderUsername)
	case *auth.TOTPMethod:
		query = `UPDATE totp_credentials
			SET verified = $2, disabled = $3, last_authentication = $4, last_update = $5
			WHERE cid = $1`
	default:
		return fmt.Errorf("pgstore: unsupported credential %T", c)
	}

	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrRecordNotFound
	}
	return nil
}

func (t *txn) DeleteCredential(ctx context.Context, kind auth.Kind, uid, cid uuid.UUID) error {
	tbl, err := tableFor(kind)
	if err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE cid = $1 AND uid = $2`, tbl.name), cid, uid)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrRecordNotFound
	}
	return nil
}

const lookupQuery = `SELECT uid, email_password, username_password, github_oauth
	FROM credential_lookups WHERE uid = $1`

func (t *txn) GetLookup(ctx context.Context, uid uuid.UUID) (*auth.CredentialLookup, error) {
	return t.scanLookup(t.tx.QueryRow(ctx, lookupQuery, uid))
}

func (t *txn) LockLookup(ctx context.Context, uid uuid.UUID) (*auth.CredentialLookup, error) {
	return t.scanLookup(t.tx.QueryRow(ctx, lookupQuery+` FOR UPDATE`, uid))
}

func (t *txn) UpsertLookupSlot(ctx context.Context, uid uuid.UUID, kind auth.Kind, cid uuid.UUID) error {
	col, err := lookupColumn(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO credential_lookups (uid, %[1]s) VALUES ($1, $2)
		ON CONFLICT (uid) DO UPDATE SET %[1]s = EXCLUDED.%[1]s`, col)
	_, err = t.tx.Exec(ctx, query, uid, cid)
	return mapError(err)
}

func (t *txn) ClearLookupSlot(ctx context.Context, uid uuid.UUID, kind auth.Kind, cid uuid.UUID) error {
	col, err := lookupColumn(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE credential_lookups SET %[1]s = NULL WHERE uid = $1 AND %[1]s = $2`, col)
	_, err = t.tx.Exec(ctx, query, uid, cid)
	return mapError(err)
}

func (t *txn) scanLookup(row pgx.Row) (*auth.CredentialLookup, error) {
	var l auth.CredentialLookup
	if err := row.Scan(&l.UID, &l.EmailPassword, &l.UsernamePassword, &l.GithubOAuth); err != nil {
		return nil, mapError(err)
	}
	return &l, nil
}

func (t *txn) selectOne(ctx context.Context, kind auth.Kind, where string, arg any) (auth.Credential, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s LIMIT 1`, metaColumns, tbl.extra, tbl.name, where)
	c, err := t.scanCredential(kind, t.tx.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (t *txn) scanCredential(kind auth.Kind, row pgx.Row) (auth.Credential, error) {
	var (
		m    auth.Meta
		dest = []any{&m.CID, &m.UID, &m.Verified, &m.Disabled, &m.Created, &m.LastAuthentication, &m.LastUpdate}
	)
	normalize := func() {
		m.Created = m.Created.UTC()
		m.LastAuthentication = m.LastAuthentication.UTC()
		m.LastUpdate = m.LastUpdate.UTC()
	}

	switch kind {
	case auth.KindEmailPassword:
		c := &auth.EmailPassword{}
		if err := row.Scan(append(dest, &c.Email, &c.PasswordHash)...); err != nil {
			return nil, err
		}
		normalize()
		c.Meta = m
		return c, nil

	case auth.KindUsernamePassword:
		c := &auth.UsernamePassword{}
		if err := row.Scan(append(dest, &c.Username, &c.PasswordHash)...); err != nil {
			return nil, err
		}
		normalize()
		c.Meta = m
		return c, nil

	case auth.KindGithubOAuth:
		c := &auth.GithubOAuth{}
		if err := row.Scan(append(dest, &c.ProviderID, &c.ProviderUsername)...); err != nil {
			return nil, err
		}
		normalize()
		c.Meta = m
		return c, nil

	case auth.KindTOTP:
		var stored string
		if err := row.Scan(append(dest, &stored)...); err != nil {
			return nil, err
		}
		secret, err := t.decodeSecret(stored)
		if err != nil {
			return nil, err
		}
		normalize()
		return &auth.TOTPMethod{Meta: m, Secret: secret}, nil

	default:
		return nil, fmt.Errorf("pgstore: unknown credential kind %q", kind)
	}
}

func (t *txn) extraValues(c auth.Credential) ([]any, error) {
	switch v := c.(type) {
	case *auth.EmailPassword:
		return []any{v.Email, v.PasswordHash}, nil
	case *auth.UsernamePassword:
		return []any{v.Username, v.PasswordHash}, nil
	case *auth.GithubOAuth:
		return []any{v.ProviderID, v.ProviderUsername}, nil
	case *auth.TOTPMethod:
		secret, err := t.encodeSecret(v.Secret)
		if err != nil {
			return nil, err
		}
		return []any{secret}, nil
	default:
		return nil, fmt.Errorf("pgstore: unsupported credential %T", c)
	}
}

// encodeSecret stores secrets as AES-GCM ciphertext when a key is set and
// as unpadded base32 otherwise.
func (t *txn) encodeSecret(secret []byte) (string, error) {
	if len(t.secretKey) == 0 {
		return totp.SecretToBase32(secret), nil
	}
	return totp.EncryptSecret(secret, t.secretKey)
}

func (t *txn) decodeSecret(stored string) ([]byte, error) {
	if len(t.secretKey) == 0 {
		return totp.SecretFromBase32(stored)
	}
	return totp.DecryptSecret(stored, t.secretKey)
}

func keyArg(kind auth.Kind, key string) (any, bool) {
	switch kind {
	case auth.KindGithubOAuth:
		id, err := strconv.ParseInt(key, 10, 64)
		return id, err == nil
	case auth.KindTOTP:
		uid, err := uuid.Parse(key)
		return uid, err == nil
	default:
		return key, true
	}
}

func lookupColumn(kind auth.Kind) (string, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return "", err
	}
	if tbl.lookup == "" {
		return "", fmt.Errorf("pgstore: %s has no lookup slot", kind)
	}
	return tbl.lookup, nil
}

// mapError translates driver errors into the store contract. Everything
// else is returned as is so serialization failures still reach pg.WithTx.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case pg.IsNotFoundError(err):
		return auth.ErrRecordNotFound
	case pg.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %s", auth.ErrRecordConflict, pg.ConstraintName(err))
	case pg.IsForeignKeyViolationError(err):
		return fmt.Errorf("%w: %s", auth.ErrOwnerMissing, pg.ConstraintName(err))
	default:
		return err
	}
}
