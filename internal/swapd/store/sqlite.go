// Package store provides a sqlite-backed swapd.Store implementation.
package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hashlockd/swapd/internal/htlcparams"
	"github.com/hashlockd/swapd/internal/swapd"
	"github.com/hashlockd/swapd/internal/swapfsm"
)

// SQLite is a swapd.Store backed by a single-writer SQLite database in WAL
// mode, one row per swap.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

var _ swapd.Store = (*SQLite)(nil)

// Open creates (or reopens) the checkpoint database at path, creating its
// parent directory and schema if needed.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS swap_checkpoints (
		swap_id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		alpha_status INTEGER NOT NULL,
		beta_status INTEGER NOT NULL,
		params TEXT NOT NULL,
		secret TEXT,
		state TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_swap_checkpoints_status
		ON swap_checkpoints(alpha_status, beta_status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// row is the JSON-serializable mirror of swapd.Checkpoint's Params
// (htlcparams.SwapParams holds []byte and duration values this package
// encodes as hex and integers, so it owns that wire shape). The
// swapfsm.Snapshot is stored with encoding/json directly.
type row struct {
	SwapID       string `json:"swap_id"`
	Role         string `json:"role"`
	Alpha        paramsDTO `json:"alpha"`
	Beta         paramsDTO `json:"beta"`
	StartOfSwap  int64  `json:"start_of_swap"`
	SafetyMargin int64  `json:"safety_margin_ns"`
	SafetyMarginBlocks int64 `json:"safety_margin_blocks"`
}

type paramsDTO struct {
	LedgerKind     string `json:"ledger_kind"`
	AssetSymbol    string `json:"asset_symbol"`
	AssetContract  string `json:"asset_contract,omitempty"` // hex
	Quantity       uint64 `json:"quantity"`
	RedeemIdentity string `json:"redeem_identity"` // hex
	RefundIdentity string `json:"refund_identity"` // hex
	SecretHash     string `json:"secret_hash"`     // hex
	ExpiryUnix     int64  `json:"expiry_unix"`
	ExpiryHeight   int64  `json:"expiry_height"`
	ExpiryIsHeight bool   `json:"expiry_is_height"`
	ExpiryIsRelative bool `json:"expiry_is_relative"`
}

func toParamsDTO(p htlcparams.Params) paramsDTO {
	return paramsDTO{
		LedgerKind:       string(p.LedgerKind),
		AssetSymbol:      p.Asset.Symbol,
		AssetContract:    hex.EncodeToString(p.Asset.Contract),
		Quantity:         p.Quantity,
		RedeemIdentity:   hex.EncodeToString(p.RedeemIdentity),
		RefundIdentity:   hex.EncodeToString(p.RefundIdentity),
		SecretHash:       hex.EncodeToString(p.SecretHash[:]),
		ExpiryUnix:       p.Expiry.Unix,
		ExpiryHeight:     p.Expiry.Height,
		ExpiryIsHeight:   p.Expiry.IsHeight,
		ExpiryIsRelative: p.Expiry.IsRelative,
	}
}

func (d paramsDTO) toParams() (htlcparams.Params, error) {
	contract, err := hex.DecodeString(d.AssetContract)
	if err != nil {
		return htlcparams.Params{}, fmt.Errorf("asset contract: %w", err)
	}
	redeem, err := hex.DecodeString(d.RedeemIdentity)
	if err != nil {
		return htlcparams.Params{}, fmt.Errorf("redeem identity: %w", err)
	}
	refund, err := hex.DecodeString(d.RefundIdentity)
	if err != nil {
		return htlcparams.Params{}, fmt.Errorf("refund identity: %w", err)
	}
	hashBytes, err := hex.DecodeString(d.SecretHash)
	if err != nil {
		return htlcparams.Params{}, fmt.Errorf("secret hash: %w", err)
	}
	var hash htlcparams.SecretHash
	copy(hash[:], hashBytes)

	return htlcparams.Params{
		LedgerKind:     htlcparams.LedgerKind(d.LedgerKind),
		Asset:          htlcparams.Asset{Symbol: d.AssetSymbol, Contract: contract},
		Quantity:       d.Quantity,
		RedeemIdentity: htlcparams.Identity(redeem),
		RefundIdentity: htlcparams.Identity(refund),
		SecretHash:     hash,
		Expiry: htlcparams.Expiry{
			Unix:       d.ExpiryUnix,
			Height:     d.ExpiryHeight,
			IsHeight:   d.ExpiryIsHeight,
			IsRelative: d.ExpiryIsRelative,
		},
	}, nil
}

// Save upserts cp, keyed by its swap ID.
func (s *SQLite) Save(ctx context.Context, cp swapd.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := row{
		SwapID:             cp.Params.SwapID.String(),
		Role:               string(cp.Params.Role),
		Alpha:              toParamsDTO(cp.Params.Alpha),
		Beta:               toParamsDTO(cp.Params.Beta),
		StartOfSwap:        cp.Params.StartOfSwap.Unix(),
		SafetyMargin:       int64(cp.Params.SafetyMargin),
		SafetyMarginBlocks: cp.Params.SafetyMarginBlocks,
	}
	paramsJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: marshal params: %w", err)
	}

	stateJSON, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("store: marshal state: %w", err)
	}

	var secretHex sql.NullString
	if cp.Secret != nil {
		secretHex = sql.NullString{String: hex.EncodeToString(cp.Secret[:]), Valid: true}
	}

	now := time.Now().Unix()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO swap_checkpoints (
			swap_id, role, alpha_status, beta_status, params, secret, state, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(swap_id) DO UPDATE SET
			alpha_status = excluded.alpha_status,
			beta_status = excluded.beta_status,
			params = excluded.params,
			secret = excluded.secret,
			state = excluded.state,
			updated_at = excluded.updated_at
	`,
		r.SwapID, r.Role, int(cp.State.Alpha), int(cp.State.Beta),
		string(paramsJSON), secretHex, string(stateJSON),
		cp.CreatedAt.Unix(), now,
	)
	if err != nil {
		return fmt.Errorf("store: save checkpoint: %w", err)
	}
	return nil
}

// Load retrieves the checkpoint for swapID.
func (s *SQLite) Load(ctx context.Context, swapID uuid.UUID) (swapd.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlRow := s.db.QueryRowContext(ctx, `
		SELECT params, secret, state, created_at, updated_at
		FROM swap_checkpoints WHERE swap_id = ?
	`, swapID.String())
	return scanCheckpoint(sqlRow)
}

// ListPending returns every checkpoint whose swap has not reached a
// terminal status (Redeemed/Refunded, stored as 4/5) on both legs.
func (s *SQLite) ListPending(ctx context.Context) ([]swapd.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT params, secret, state, created_at, updated_at
		FROM swap_checkpoints
		WHERE NOT (alpha_status IN (4, 5) AND beta_status IN (4, 5))
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list pending: %w", err)
	}
	defer rows.Close()

	var out []swapd.Checkpoint
	for rows.Next() {
		cp, err := scanCheckpointRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// Delete removes a checkpoint.
func (s *SQLite) Delete(ctx context.Context, swapID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM swap_checkpoints WHERE swap_id = ?`, swapID.String())
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCheckpoint(r *sql.Row) (swapd.Checkpoint, error) {
	return scan(r)
}

func scanCheckpointRows(r *sql.Rows) (swapd.Checkpoint, error) {
	return scan(r)
}

func scan(r scanner) (swapd.Checkpoint, error) {
	var paramsJSON, stateJSON string
	var secretHex sql.NullString
	var createdAt, updatedAt int64

	if err := r.Scan(&paramsJSON, &secretHex, &stateJSON, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return swapd.Checkpoint{}, swapd.ErrNotFound
		}
		return swapd.Checkpoint{}, err
	}

	var rowData row
	if err := json.Unmarshal([]byte(paramsJSON), &rowData); err != nil {
		return swapd.Checkpoint{}, fmt.Errorf("store: unmarshal params: %w", err)
	}
	alpha, err := rowData.Alpha.toParams()
	if err != nil {
		return swapd.Checkpoint{}, fmt.Errorf("store: alpha params: %w", err)
	}
	beta, err := rowData.Beta.toParams()
	if err != nil {
		return swapd.Checkpoint{}, fmt.Errorf("store: beta params: %w", err)
	}
	swapID, err := uuid.Parse(rowData.SwapID)
	if err != nil {
		return swapd.Checkpoint{}, fmt.Errorf("store: parse swap id: %w", err)
	}

	var snap swapfsm.Snapshot
	if err := json.Unmarshal([]byte(stateJSON), &snap); err != nil {
		return swapd.Checkpoint{}, fmt.Errorf("store: unmarshal state: %w", err)
	}

	cp := swapd.Checkpoint{
		Params: htlcparams.SwapParams{
			SwapID:             swapID,
			Role:               htlcparams.Role(rowData.Role),
			Alpha:              alpha,
			Beta:               beta,
			StartOfSwap:        time.Unix(rowData.StartOfSwap, 0),
			SafetyMargin:       time.Duration(rowData.SafetyMargin),
			SafetyMarginBlocks: rowData.SafetyMarginBlocks,
		},
		State:     snap,
		CreatedAt: time.Unix(createdAt, 0),
		UpdatedAt: time.Unix(updatedAt, 0),
	}
	if secretHex.Valid {
		b, err := hex.DecodeString(secretHex.String)
		if err != nil {
			return swapd.Checkpoint{}, fmt.Errorf("store: decode secret: %w", err)
		}
		var secret htlcparams.Secret
		copy(secret[:], b)
		cp.Secret = &secret
	}
	return cp, nil
}
