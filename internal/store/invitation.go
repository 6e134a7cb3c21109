package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/larder/internal/model"
)

const invitationTTL = 7 * 24 * time.Hour

type InvitationStore struct {
	db *sql.DB
}

func NewInvitationStore(db *sql.DB) *InvitationStore {
	return &InvitationStore{db: db}
}

func scanInvitation(scanner interface{ Scan(...any) error }) (*model.Invitation, error) {
	var inv model.Invitation
	err := scanner.Scan(
		&inv.ID, &inv.HouseholdID, &inv.InvitedEmail, &inv.Token,
		&inv.Status, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

const invitationCols = `id, household_id, invited_email, token, status, expires_at, created_at`

// Create inserts a pending invitation with a fresh random token and a 7-day
// expiry. The partial unique index on (household_id, invited_email) WHERE
// status = 'pending' keeps at most one pending invitation per pair.
func (s *InvitationStore) Create(householdID int64, email string) (*model.Invitation, error) {
	token := uuid.NewString()
	expiresAt := time.Now().UTC().Add(invitationTTL)

	result, err := s.db.Exec(
		`INSERT INTO invitations (household_id, invited_email, token, expires_at) VALUES (?, ?, ?, ?)`,
		householdID, NormalizeEmail(email), token, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert invitation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *InvitationStore) GetByID(id int64) (*model.Invitation, error) {
	row := s.db.QueryRow(`SELECT `+invitationCols+` FROM invitations WHERE id = ?`, id)
	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (s *InvitationStore) GetByToken(token string) (*model.Invitation, error) {
	row := s.db.QueryRow(`SELECT `+invitationCols+` FROM invitations WHERE token = ?`, token)
	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invitation by token: %w", err)
	}
	return inv, nil
}

// GetPending returns the pending invitation for a (household, email) pair,
// expired or not. Expiry is a caller concern.
func (s *InvitationStore) GetPending(householdID int64, email string) (*model.Invitation, error) {
	row := s.db.QueryRow(
		`SELECT `+invitationCols+` FROM invitations WHERE household_id = ? AND invited_email = ? AND status = ?`,
		householdID, NormalizeEmail(email), model.InvitationPending,
	)
	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending invitation: %w", err)
	}
	return inv, nil
}

// ListPendingByHousehold returns all pending invitations for a household,
// including expired ones.
func (s *InvitationStore) ListPendingByHousehold(householdID int64) ([]model.Invitation, error) {
	rows, err := s.db.Query(
		`SELECT `+invitationCols+` FROM invitations WHERE household_id = ? AND status = ? ORDER BY created_at ASC`,
		householdID, model.InvitationPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var invs []model.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invs = append(invs, *inv)
	}
	return invs, rows.Err()
}

// ListPendingByEmail returns pending, unexpired invitations addressed to an
// email. This backs the self-service inbox, the one query that filters
// expiry server-side.
func (s *InvitationStore) ListPendingByEmail(email string) ([]model.Invitation, error) {
	rows, err := s.db.Query(
		`SELECT `+invitationCols+` FROM invitations WHERE invited_email = ? AND status = ? AND expires_at > datetime('now') ORDER BY created_at ASC`,
		NormalizeEmail(email), model.InvitationPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list invitations by email: %w", err)
	}
	defer rows.Close()

	var invs []model.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invs = append(invs, *inv)
	}
	return invs, rows.Err()
}

// Accept inserts the membership and flips the invitation to accepted in one
// transaction, so acceptance is all-or-nothing.
func (s *InvitationStore) Accept(inv *model.Invitation, userID int64) (*model.HouseholdMember, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// A user holds one membership at a time; accepting moves them out of
	// their old household.
	if _, err := tx.Exec(`DELETE FROM household_members WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("remove prior membership: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO household_members (household_id, user_id, role) VALUES (?, ?, ?)`,
		inv.HouseholdID, userID, model.RoleMember,
	)
	if err != nil {
		return nil, fmt.Errorf("insert membership: %w", err)
	}
	memberID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	res, err := tx.Exec(
		`UPDATE invitations SET status = ? WHERE id = ? AND status = ?`,
		model.InvitationAccepted, inv.ID, model.InvitationPending,
	)
	if err != nil {
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Raced with another accept; roll everything back.
		return nil, fmt.Errorf("invitation no longer pending")
	}

	row := tx.QueryRow(`SELECT `+householdMemberCols+` FROM household_members WHERE id = ?`, memberID)
	member, err := scanHouseholdMember(row)
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return member, nil
}

// Delete hard-deletes an invitation (cancellation).
func (s *InvitationStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM invitations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}
